package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/application/services"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	"go.uber.org/zap"
)

// EnrollmentHandler serves the student's enrollment surface and the
// instructor's revenue report.
type EnrollmentHandler struct {
	enrollments *repository.EnrollmentRepository
	service     *services.EnrollmentService
	facade      *services.QueryFacade
	logger      *zap.Logger
}

// NewEnrollmentHandler creates an enrollment handler.
func NewEnrollmentHandler(
	enrollments *repository.EnrollmentRepository,
	service *services.EnrollmentService,
	facade *services.QueryFacade,
	logger *zap.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, service: service, facade: facade, logger: logger}
}

// Enroll handles POST /api/enroll/{courseID}. 404 on missing course, 400 on
// duplicate enrollment.
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	enrollment, err := h.service.Enroll(r.Context(), claims.UserID, chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, enrollment)
}

// ListMine handles GET /api/enroll/all: the caller's enrollments.
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	enrollments, err := h.enrollments.FindByUser(r.Context(), claims.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, enrollments)
}

// MyLearning handles GET /api/enroll/my-learning: enrollments with computed
// progress.
func (h *EnrollmentHandler) MyLearning(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	entries, err := h.facade.MyLearning(r.Context(), claims.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, entries)
}

// Progress handles GET /api/enroll/{courseID}/progress.
func (h *EnrollmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	enrollment, err := h.service.Progress(r.Context(), claims.UserID, chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, enrollment)
}

// ProgressRequest is the progress update body: one lecture completed.
type ProgressRequest struct {
	LectureID string `json:"lectureId" validate:"required"`
}

// UpdateProgress handles PUT /api/enroll/{courseID}/progress.
func (h *EnrollmentHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ProgressRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	enrollment, err := h.service.CompleteLecture(r.Context(), claims.UserID, chi.URLParam(r, "courseID"), req.LectureID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, enrollment)
}

// Revenue handles GET /api/enroll/revenue: the instructor earnings report.
func (h *EnrollmentHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	report, err := h.facade.InstructorEarnings(r.Context(), claims.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}
