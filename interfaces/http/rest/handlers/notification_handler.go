package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// NotificationHandler serves the user's notification inbox and the admin
// send/broadcast and template surface.
type NotificationHandler struct {
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	auditor       *Auditor
	logger        *zap.Logger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(
	notifications *repository.NotificationRepository,
	users *repository.UserRepository,
	auditor *Auditor,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, users: users, auditor: auditor, logger: logger}
}

// ListMine handles GET /api/notifications: the caller's inbox, newest first.
func (h *NotificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.notifications.ListByUser(r.Context(), claims.UserID, limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Notifications, page.LastKey)
}

// MarkReadRequest addresses one notification by its creation time and ID.
type MarkReadRequest struct {
	CreatedAt      string `json:"createdAt" validate:"required"`
	NotificationID string `json:"notificationId" validate:"required"`
}

// MarkRead handles POST /api/notifications/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req MarkReadRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), claims.UserID, req.CreatedAt, req.NotificationID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "notification read"})
}

// SendNotificationRequest is the admin send body. Either a single user or an
// audience filter must be supplied.
type SendNotificationRequest struct {
	UserID   string `json:"userId,omitempty"`
	Audience string `json:"audience,omitempty" validate:"omitempty,oneof=all students instructors"`
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Body     string `json:"body" validate:"required,max=5000"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,max=50"`
}

// Send handles POST /api/admin/notifications: one user directly, or a
// broadcast to an audience resolved through the user listing.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req SendNotificationRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if req.UserID == "" && req.Audience == "" {
		common.RespondAppError(w, apperrors.NewValidationError("either userId or audience is required"))
		return
	}

	if req.UserID != "" {
		n := &domain.Notification{UserID: req.UserID, Title: req.Title, Body: req.Body, Kind: req.Kind}
		if err := h.notifications.Create(r.Context(), n); err != nil {
			common.RespondAppError(w, err)
			return
		}
		h.auditor.Record(r.Context(), r, claims, "send_notification", "USER#"+req.UserID, nil, req.Title, "")
		common.RespondJSON(w, http.StatusCreated, n)
		return
	}

	filter := repository.UserFilter{}
	switch req.Audience {
	case "students":
		filter.Role = domain.RoleStudent
	case "instructors":
		filter.Role = domain.RoleInstructor
	}
	users, err := h.users.ListWithFilter(r.Context(), filter)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	userIDs := make([]string, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}

	sent, err := h.notifications.Broadcast(r.Context(), userIDs, req.Title, req.Body, req.Kind)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "broadcast_notification", "AUDIENCE#"+req.Audience, nil, req.Title, "")
	common.RespondJSON(w, http.StatusCreated, map[string]int{"sent": sent})
}

// TemplateRequest is the template create/update body.
type TemplateRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Body    string `json:"body" validate:"required,max=10000"`
}

// CreateTemplate handles POST /api/admin/notification-templates.
func (h *NotificationHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req TemplateRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	t := &domain.NotificationTemplate{
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedBy: claims.UserID,
	}
	if err := h.notifications.CreateTemplate(r.Context(), t); err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "create_notification_template", "TEMPLATE#"+t.ID, nil, t.Name, "")
	common.RespondJSON(w, http.StatusCreated, t)
}

// GetTemplate handles GET /api/admin/notification-templates/{templateID}.
func (h *NotificationHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.notifications.FindTemplate(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, t)
}

// UpdateTemplate handles PUT /api/admin/notification-templates/{templateID}.
func (h *NotificationHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req TemplateRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	templateID := chi.URLParam(r, "templateID")
	t, err := h.notifications.UpdateTemplate(r.Context(), templateID, repository.TemplatePatch{
		Name:    &req.Name,
		Subject: &req.Subject,
		Body:    &req.Body,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "update_notification_template", "TEMPLATE#"+templateID, nil, t.Name, "")
	common.RespondJSON(w, http.StatusOK, t)
}

// DeleteTemplate handles DELETE /api/admin/notification-templates/{templateID}.
func (h *NotificationHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	templateID := chi.URLParam(r, "templateID")
	if err := h.notifications.DeleteTemplate(r.Context(), templateID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "delete_notification_template", "TEMPLATE#"+templateID, nil, nil, "")
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "template deleted"})
}
