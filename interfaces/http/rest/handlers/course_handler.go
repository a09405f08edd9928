package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/application/services"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// CourseHandler serves the public course catalog and the instructor's course
// and lecture management surface.
type CourseHandler struct {
	courses  *repository.CourseRepository
	lectures *repository.LectureRepository
	facade   *services.QueryFacade
	logger   *zap.Logger
}

// NewCourseHandler creates a course handler.
func NewCourseHandler(
	courses *repository.CourseRepository,
	lectures *repository.LectureRepository,
	facade *services.QueryFacade,
	logger *zap.Logger,
) *CourseHandler {
	return &CourseHandler{courses: courses, lectures: lectures, facade: facade, logger: logger}
}

// List handles GET /api/courses with title, category and sort narrowing.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.CourseQuery{
		TitleSubstring: q.Get("title"),
		CategoryID:     q.Get("categoryId"),
		SortBy:         q.Get("sortKey"),
		Descending:     q.Get("sortDir") == "desc",
	}
	if query.SortBy == "" {
		query.SortBy = repository.SortByCreatedAt
		query.Descending = true
	}

	courses, err := h.courses.FindAll(r.Context(), query)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, courses)
}

// Get handles GET /api/courses/{courseID}: metadata plus lectures.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.facade.GetCourseDetail(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, detail)
}

// CreateCourseRequest is the course creation body.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageKey    string  `json:"imageKey,omitempty"`
	CategoryID  string  `json:"categoryId,omitempty" validate:"omitempty,max=64"`
}

// Create handles POST /api/courses.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateCourseRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	course := &domain.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: claims.UserID,
		Price:        req.Price,
		ImageKey:     req.ImageKey,
		CategoryID:   req.CategoryID,
	}
	if err := h.courses.Create(r.Context(), course); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourseRequest is the course update body; absent fields are kept.
type UpdateCourseRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageKey    *string  `json:"imageKey,omitempty"`
	CategoryID  *string  `json:"categoryId,omitempty"`
}

// Update handles PUT /api/courses/{courseID}. Only the owning instructor may
// edit.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	courseID := chi.URLParam(r, "courseID")
	if err := h.requireOwnership(r, courseID, claims.UserID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateCourseRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	course, err := h.courses.Update(r.Context(), courseID, repository.CoursePatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageKey:    req.ImageKey,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /api/courses/{courseID}. Removes the metadata and all
// lectures; enrollments and ratings are left in place.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	courseID := chi.URLParam(r, "courseID")
	if err := h.requireOwnership(r, courseID, claims.UserID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.courses.Delete(r.Context(), courseID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
}

// CreateLectureRequest is the lecture creation body.
type CreateLectureRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	VideoKey        string `json:"videoKey" validate:"required"`
	DurationSeconds int    `json:"durationSeconds,omitempty" validate:"omitempty,gte=0"`
	Position        int    `json:"position,omitempty" validate:"omitempty,gte=0"`
}

// CreateLecture handles POST /api/courses/{courseID}/lectures.
func (h *CourseHandler) CreateLecture(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	courseID := chi.URLParam(r, "courseID")
	if err := h.requireOwnership(r, courseID, claims.UserID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateLectureRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	lecture := &domain.Lecture{
		CourseID:        courseID,
		Title:           req.Title,
		VideoKey:        req.VideoKey,
		DurationSeconds: req.DurationSeconds,
		Position:        req.Position,
	}
	if err := h.lectures.Create(r.Context(), lecture); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, lecture)
}

func (h *CourseHandler) requireOwnership(r *http.Request, courseID, userID string) error {
	course, err := h.courses.FindByID(r.Context(), courseID)
	if err != nil {
		return err
	}
	if !course.OwnedBy(userID) {
		return apperrors.NewForbiddenError("you do not own this course").
			WithCode(apperrors.CodeNotOwner)
	}
	return nil
}
