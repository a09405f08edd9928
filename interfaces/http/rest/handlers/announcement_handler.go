package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	"go.uber.org/zap"
)

// AnnouncementHandler serves platform announcements: a public published feed
// and the admin lifecycle surface.
type AnnouncementHandler struct {
	announcements *repository.AnnouncementRepository
	auditor       *Auditor
	logger        *zap.Logger
}

// NewAnnouncementHandler creates an announcement handler.
func NewAnnouncementHandler(announcements *repository.AnnouncementRepository, auditor *Auditor, logger *zap.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, auditor: auditor, logger: logger}
}

// ListPublished handles GET /api/announcements: the public feed.
func (h *AnnouncementHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.announcements.ListByStatus(r.Context(), domain.AnnouncementPublished, limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Announcements, page.LastKey)
}

// CreateAnnouncementRequest is the creation body; announcements start as
// drafts.
type CreateAnnouncementRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Body     string `json:"body" validate:"required,max=10000"`
	Audience string `json:"audience,omitempty" validate:"omitempty,oneof=all students instructors"`
}

// Create handles POST /api/admin/announcements.
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateAnnouncementRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	a := &domain.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		Audience:  req.Audience,
		CreatedBy: claims.UserID,
	}
	if err := h.announcements.Create(r.Context(), a); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "create_announcement", "ANNOUNCEMENT#"+a.ID, nil, a.Title, "")
	common.RespondJSON(w, http.StatusCreated, a)
}

// ListByStatus handles GET /api/admin/announcements?status=draft.
func (h *AnnouncementHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.AnnouncementStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.AnnouncementDraft
	}
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.announcements.ListByStatus(r.Context(), status, limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Announcements, page.LastKey)
}

// UpdateAnnouncementRequest is the content edit body.
type UpdateAnnouncementRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Body     *string `json:"body,omitempty" validate:"omitempty,max=10000"`
	Audience *string `json:"audience,omitempty" validate:"omitempty,oneof=all students instructors"`
}

// Update handles PUT /api/admin/announcements/{announcementID}.
func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateAnnouncementRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	id := chi.URLParam(r, "announcementID")
	a, err := h.announcements.Update(r.Context(), id, repository.AnnouncementPatch{
		Title:    req.Title,
		Body:     req.Body,
		Audience: req.Audience,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "update_announcement", "ANNOUNCEMENT#"+id, nil, a.Title, "")
	common.RespondJSON(w, http.StatusOK, a)
}

// TransitionAnnouncementRequest is the lifecycle move body.
type TransitionAnnouncementRequest struct {
	Status       string `json:"status" validate:"required,oneof=draft scheduled published archived"`
	ScheduledFor string `json:"scheduledFor,omitempty"`
}

// Transition handles PUT /api/admin/announcements/{announcementID}/status.
func (h *AnnouncementHandler) Transition(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req TransitionAnnouncementRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	id := chi.URLParam(r, "announcementID")
	a, err := h.announcements.Transition(r.Context(), id, domain.AnnouncementStatus(req.Status), req.ScheduledFor)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "transition_announcement", "ANNOUNCEMENT#"+id, nil, req.Status, "")
	common.RespondJSON(w, http.StatusOK, a)
}
