package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/auth"
	"github.com/upskillpro/backend/pkg/common"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// TicketHandler serves the user-facing support surface and the admin ticket
// queues.
type TicketHandler struct {
	tickets *repository.TicketRepository
	auditor *Auditor
	logger  *zap.Logger
}

// NewTicketHandler creates a ticket handler.
func NewTicketHandler(tickets *repository.TicketRepository, auditor *Auditor, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, auditor: auditor, logger: logger}
}

// CreateTicketRequest is the ticket creation body.
type CreateTicketRequest struct {
	Subject  string `json:"subject" validate:"required,min=1,max=200"`
	Body     string `json:"body" validate:"required,max=5000"`
	Priority string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
}

// Create handles POST /api/tickets.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateTicketRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	ticket := &domain.SupportTicket{
		UserID:   claims.UserID,
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: domain.TicketPriority(req.Priority),
	}
	if err := h.tickets.Create(r.Context(), ticket); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, ticket)
}

// ListMine handles GET /api/tickets: the caller's tickets, newest first.
func (h *TicketHandler) ListMine(w http.ResponseWriter, r *http.Request) {
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
	page, err := h.tickets.ListByUser(r.Context(), claims.UserID, limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Tickets, page.LastKey)
}

// Get handles GET /api/tickets/{ticketID}: the ticket plus its thread. The
// owner and privileged readers may see it.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	ticket, err := h.tickets.FindByID(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if ticket.UserID != claims.UserID && !auth.HasPrivilegedRead(claims.Role) {
		common.RespondAppError(w, apperrors.NewForbiddenError("not your ticket"))
		return
	}

	messages, err := h.tickets.ListMessages(r.Context(), ticket.ID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"ticket": ticket, "messages": messages})
}

// MessageRequest is the ticket message body.
type MessageRequest struct {
	Body     string `json:"body" validate:"required,max=5000"`
	Internal bool   `json:"internal,omitempty"`
}

// AddMessage handles POST /api/tickets/{ticketID}/messages.
func (h *TicketHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req MessageRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	ticket, err := h.tickets.FindByID(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	privileged := auth.HasPrivilegedRead(claims.Role)
	if ticket.UserID != claims.UserID && !privileged {
		common.RespondAppError(w, apperrors.NewForbiddenError("not your ticket"))
		return
	}
	// Internal notes are only visible to staff; only staff may write them.
	if req.Internal && !privileged {
		common.RespondAppError(w, apperrors.NewForbiddenError("internal notes are staff-only"))
		return
	}

	msg := &domain.TicketMessage{
		TicketID: ticket.ID,
		AuthorID: claims.UserID,
		Body:     req.Body,
		Internal: req.Internal,
	}
	if err := h.tickets.AddMessage(r.Context(), msg); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, msg)
}

// Queue handles GET /api/admin/tickets?status=open: a status queue in
// priority order.
func (h *TicketHandler) Queue(w http.ResponseWriter, r *http.Request) {
	status := domain.TicketStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.TicketOpen
	}
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.tickets.ListByStatus(r.Context(), status, limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Tickets, page.LastKey)
}

// TransitionRequest is the ticket transition body.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress resolved"`
}

// Transition handles PUT /api/admin/tickets/{ticketID}/status.
func (h *TicketHandler) Transition(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.tickets.Transition(r.Context(), ticketID, domain.TicketStatus(req.Status), claims.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "transition_ticket", "TICKET#"+ticketID, nil, req.Status, "")
	common.RespondJSON(w, http.StatusOK, ticket)
}
