package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// TicketRepository owns support tickets and their message threads. The GSI1
// partition key mirrors the ticket's status so each status queue is one
// partition, priority-ordered.
type TicketRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewTicketRepository creates a ticket repository.
func NewTicketRepository(st store.Store, logger *zap.Logger) *TicketRepository {
	return &TicketRepository{store: st, logger: logger}
}

// Create opens a new ticket. Status starts at open; priority defaults to
// medium when unset.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.PriorityMedium
	}
	if !domain.ValidTicketPriority(ticket.Priority) {
		return apperrors.NewValidationError("unknown ticket priority: " + string(ticket.Priority))
	}
	ticket.Status = domain.TicketOpen
	now := schema.FormatTime(time.Now())
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	item, err := marshalEntity(ticket, schema.EntityTicket)
	if err != nil {
		return apperrors.NewDatabaseError("ticket.create", err)
	}
	item[schema.AttrPK] = s(schema.TicketPK(ticket.ID))
	item[schema.AttrSK] = s(schema.TicketSK())
	item[schema.AttrGSI1PK] = s(schema.TicketGSI1PK(string(ticket.Status)))
	item[schema.AttrGSI1SK] = s(schema.TicketGSI1SK(string(ticket.Priority), ticket.CreatedAt))
	item[schema.AttrGSI2PK] = s(schema.TicketGSI2PK(ticket.UserID))
	item[schema.AttrGSI2SK] = s(schema.TicketGSI2SK(ticket.CreatedAt))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("ticket already exists")
		}
		return apperrors.NewDatabaseError("ticket.create", err)
	}
	return nil
}

// FindByID is a point get, or NotFound.
func (r *TicketRepository) FindByID(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	item, err := r.store.Get(ctx, schema.TicketPK(ticketID), schema.TicketSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("ticket.findById", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("ticket")
	}
	var ticket domain.SupportTicket
	if err := unmarshalEntity(item, &ticket); err != nil {
		return nil, apperrors.NewDatabaseError("ticket.findById", err)
	}
	return &ticket, nil
}

// TicketPage is one page of tickets plus the resume key.
type TicketPage struct {
	Tickets []*domain.SupportTicket
	LastKey store.Item
}

// ListByStatus returns one status queue off GSI1. Within the queue tickets
// order lexicographically by priority then age; Forward=true keeps that order.
func (r *TicketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus, limit int32, startKey store.Item) (*TicketPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.TicketGSI1PK(string(status)),
		IndexName: schema.IndexGSI1,
		Forward:   true,
		Limit:     limit,
		StartKey:  startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("ticket.listByStatus", err)
	}
	return r.collectPage(out)
}

// ListByUser returns one user's tickets newest first off GSI2.
func (r *TicketRepository) ListByUser(ctx context.Context, userID string, limit int32, startKey store.Item) (*TicketPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.TicketGSI2PK(userID),
		SKPrefix:  "TICKET#",
		IndexName: schema.IndexGSI2,
		Forward:   false,
		Limit:     limit,
		StartKey:  startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("ticket.listByUser", err)
	}
	return r.collectPage(out)
}

// Transition moves the ticket to a new status, rewriting the GSI1 queue key.
// Resolution stamps resolvedBy/resolvedAt.
func (r *TicketRepository) Transition(ctx context.Context, ticketID string, to domain.TicketStatus, actorID string) (*domain.SupportTicket, error) {
	ticket, err := r.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionTicket(ticket.Status, to) {
		return nil, apperrors.NewValidationError(
			"cannot move ticket from "+string(ticket.Status)+" to "+string(to)).
			WithCode(apperrors.CodeInvalidTransition)
	}

	now := schema.FormatTime(time.Now())
	muts := []store.Mutation{
		store.Set("status", string(to)),
		store.Set("updatedAt", now),
		store.Set(schema.AttrGSI1PK, schema.TicketGSI1PK(string(to))),
	}
	if to == domain.TicketInProgress && actorID != "" {
		muts = append(muts, store.Set("assignedTo", actorID))
	}
	if to == domain.TicketResolved {
		muts = append(muts, store.Set("resolvedBy", actorID), store.Set("resolvedAt", now))
	}

	if err := r.store.Update(ctx, schema.TicketPK(ticketID), schema.TicketSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return nil, apperrors.NewNotFoundError("ticket")
		}
		return nil, apperrors.NewDatabaseError("ticket.transition", err)
	}
	return r.FindByID(ctx, ticketID)
}

// AddMessage appends one message to the ticket's thread.
func (r *TicketRepository) AddMessage(ctx context.Context, msg *domain.TicketMessage) error {
	if _, err := r.FindByID(ctx, msg.TicketID); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = schema.FormatTime(time.Now())

	item, err := marshalEntity(msg, schema.EntityTicketMessage)
	if err != nil {
		return apperrors.NewDatabaseError("ticket.addMessage", err)
	}
	item[schema.AttrPK] = s(schema.TicketPK(msg.TicketID))
	item[schema.AttrSK] = s(schema.TicketMessageSK(msg.CreatedAt, msg.ID))

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("ticket.addMessage", err)
	}
	return nil
}

// ListMessages returns a ticket's thread oldest first.
func (r *TicketRepository) ListMessages(ctx context.Context, ticketID string) ([]*domain.TicketMessage, error) {
	var messages []*domain.TicketMessage
	var startKey store.Item
	for {
		out, err := r.store.Query(ctx, store.QueryInput{
			PK:       schema.TicketPK(ticketID),
			SKPrefix: schema.TicketMessagePrefix(),
			Forward:  true,
			StartKey: startKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("ticket.listMessages", err)
		}
		for _, item := range out.Items {
			var msg domain.TicketMessage
			if err := unmarshalEntity(item, &msg); err != nil {
				r.logger.Warn("skipping unparsable ticket message", zap.Error(err))
				continue
			}
			messages = append(messages, &msg)
		}
		if out.LastKey == nil {
			return messages, nil
		}
		startKey = out.LastKey
	}
}

func (r *TicketRepository) collectPage(out *store.QueryOutput) (*TicketPage, error) {
	page := &TicketPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var ticket domain.SupportTicket
		if err := unmarshalEntity(item, &ticket); err != nil {
			r.logger.Warn("skipping unparsable ticket item", zap.Error(err))
			continue
		}
		page.Tickets = append(page.Tickets, &ticket)
	}
	return page, nil
}
