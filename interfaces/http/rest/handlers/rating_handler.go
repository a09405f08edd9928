package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/application/services"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	"go.uber.org/zap"
)

// RatingHandler serves the public rating listings and the student's rating
// mutations.
type RatingHandler struct {
	ratings *repository.RatingRepository
	courses *repository.CourseRepository
	service *services.RatingService
	logger  *zap.Logger
}

// NewRatingHandler creates a rating handler.
func NewRatingHandler(
	ratings *repository.RatingRepository,
	courses *repository.CourseRepository,
	service *services.RatingService,
	logger *zap.Logger,
) *RatingHandler {
	return &RatingHandler{ratings: ratings, courses: courses, service: service, logger: logger}
}

// List handles GET /api/courses/{courseID}/ratings, newest first, paginated.
func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.ratings.FindByCourse(r.Context(), chi.URLParam(r, "courseID"), limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Ratings, page.LastKey)
}

// StatsResponse is the aggregate mirror read off the course item.
type StatsResponse struct {
	AverageRating float64        `json:"averageRating"`
	RatingCount   int            `json:"ratingCount"`
	Distribution  map[string]int `json:"distribution"`
}

// Stats handles GET /api/courses/{courseID}/ratings/stats.
func (h *RatingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.FindByID(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, StatsResponse{
		AverageRating: course.AverageRating,
		RatingCount:   course.RatingCount,
		Distribution:  course.RatingDistribution,
	})
}

// RateRequest is the rating body.
type RateRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review,omitempty" validate:"omitempty,max=1000"`
}

// Rate handles POST /api/courses/{courseID}/ratings: 201 on first rating, 200
// when replacing an earlier one.
func (h *RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req RateRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.service.Rate(r.Context(), claims.UserID, chi.URLParam(r, "courseID"), req.Rating, req.Review)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	common.RespondJSON(w, status, result.Rating)
}

// Delete handles DELETE /api/courses/{courseID}/ratings.
func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), claims.UserID, chi.URLParam(r, "courseID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "rating deleted"})
}
