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

// AnnouncementRepository owns platform announcements. Like tickets, the GSI1
// partition mirrors the lifecycle status so each state is one queue.
type AnnouncementRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewAnnouncementRepository creates an announcement repository.
func NewAnnouncementRepository(st store.Store, logger *zap.Logger) *AnnouncementRepository {
	return &AnnouncementRepository{store: st, logger: logger}
}

// Create writes a new announcement in draft state.
func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Audience == "" {
		a.Audience = "all"
	}
	a.Status = domain.AnnouncementDraft
	now := schema.FormatTime(time.Now())
	a.CreatedAt = now
	a.UpdatedAt = now

	item, err := marshalEntity(a, schema.EntityAnnouncement)
	if err != nil {
		return apperrors.NewDatabaseError("announcement.create", err)
	}
	item[schema.AttrPK] = s(schema.AnnouncementPK(a.ID))
	item[schema.AttrSK] = s(schema.AnnouncementSK())
	item[schema.AttrGSI1PK] = s(schema.AnnouncementGSI1PK(string(a.Status)))
	item[schema.AttrGSI1SK] = s(schema.AnnouncementGSI1SK(a.CreatedAt))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("announcement already exists")
		}
		return apperrors.NewDatabaseError("announcement.create", err)
	}
	return nil
}

// FindByID is a point get, or NotFound.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*domain.Announcement, error) {
	item, err := r.store.Get(ctx, schema.AnnouncementPK(id), schema.AnnouncementSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("announcement.findById", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("announcement")
	}
	var a domain.Announcement
	if err := unmarshalEntity(item, &a); err != nil {
		return nil, apperrors.NewDatabaseError("announcement.findById", err)
	}
	return &a, nil
}

// AnnouncementPatch carries the editable fields; nil means keep.
type AnnouncementPatch struct {
	Title    *string
	Body     *string
	Audience *string
}

// Update edits content fields in place. Lifecycle moves go through Transition.
func (r *AnnouncementRepository) Update(ctx context.Context, id string, patch AnnouncementPatch) (*domain.Announcement, error) {
	var muts []store.Mutation
	if patch.Title != nil {
		muts = append(muts, store.Set("title", *patch.Title))
	}
	if patch.Body != nil {
		muts = append(muts, store.Set("body", *patch.Body))
	}
	if patch.Audience != nil {
		muts = append(muts, store.Set("audience", *patch.Audience))
	}
	if len(muts) == 0 {
		return nil, apperrors.NewValidationError("no announcement fields to update")
	}
	muts = append(muts, store.Set("updatedAt", schema.FormatTime(time.Now())))

	if err := r.store.Update(ctx, schema.AnnouncementPK(id), schema.AnnouncementSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return nil, apperrors.NewNotFoundError("announcement")
		}
		return nil, apperrors.NewDatabaseError("announcement.update", err)
	}
	return r.FindByID(ctx, id)
}

// Transition moves the announcement through its lifecycle, rewriting the GSI1
// queue key. Scheduling requires scheduledFor; publishing and archiving stamp
// their timestamps.
func (r *AnnouncementRepository) Transition(ctx context.Context, id string, to domain.AnnouncementStatus, scheduledFor string) (*domain.Announcement, error) {
	a, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionAnnouncement(a.Status, to) {
		return nil, apperrors.NewValidationError(
			"cannot move announcement from "+string(a.Status)+" to "+string(to)).
			WithCode(apperrors.CodeInvalidTransition)
	}

	now := schema.FormatTime(time.Now())
	muts := []store.Mutation{
		store.Set("status", string(to)),
		store.Set("updatedAt", now),
		store.Set(schema.AttrGSI1PK, schema.AnnouncementGSI1PK(string(to))),
	}
	switch to {
	case domain.AnnouncementScheduled:
		if scheduledFor == "" {
			return nil, apperrors.NewValidationError("scheduledFor is required to schedule an announcement")
		}
		muts = append(muts, store.Set("scheduledFor", scheduledFor))
	case domain.AnnouncementPublished:
		muts = append(muts, store.Set("publishedAt", now))
	case domain.AnnouncementArchived:
		muts = append(muts, store.Set("archivedAt", now))
	case domain.AnnouncementDraft:
		muts = append(muts, store.Remove("scheduledFor"))
	}

	if err := r.store.Update(ctx, schema.AnnouncementPK(id), schema.AnnouncementSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return nil, apperrors.NewNotFoundError("announcement")
		}
		return nil, apperrors.NewDatabaseError("announcement.transition", err)
	}
	return r.FindByID(ctx, id)
}

// AnnouncementPage is one page of announcements plus the resume key.
type AnnouncementPage struct {
	Announcements []*domain.Announcement
	LastKey       store.Item
}

// ListByStatus returns one lifecycle queue newest first off GSI1.
func (r *AnnouncementRepository) ListByStatus(ctx context.Context, status domain.AnnouncementStatus, limit int32, startKey store.Item) (*AnnouncementPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.AnnouncementGSI1PK(string(status)),
		IndexName: schema.IndexGSI1,
		Forward:   false,
		Limit:     limit,
		StartKey:  startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("announcement.listByStatus", err)
	}

	page := &AnnouncementPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var a domain.Announcement
		if err := unmarshalEntity(item, &a); err != nil {
			r.logger.Warn("skipping unparsable announcement", zap.Error(err))
			continue
		}
		page.Announcements = append(page.Announcements, &a)
	}
	return page, nil
}
