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

// NotificationRepository owns per-user notifications and the reusable
// notification templates admins author.
type NotificationRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(st store.Store, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{store: st, logger: logger}
}

// Create writes one notification to the user's partition.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Read = false
	n.CreatedAt = schema.FormatTime(time.Now())

	item, err := marshalEntity(n, schema.EntityNotification)
	if err != nil {
		return apperrors.NewDatabaseError("notification.create", err)
	}
	item[schema.AttrPK] = s(schema.NotificationPK(n.UserID))
	item[schema.AttrSK] = s(schema.NotificationSK(n.CreatedAt, n.ID))

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("notification.create", err)
	}
	return nil
}

// Broadcast fans one notification body out to many users in batched writes.
func (r *NotificationRepository) Broadcast(ctx context.Context, userIDs []string, title, body, kind string) (int, error) {
	now := schema.FormatTime(time.Now())
	var ops []store.WriteOp
	for _, userID := range userIDs {
		n := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     title,
			Body:      body,
			Kind:      kind,
			CreatedAt: now,
		}
		item, err := marshalEntity(n, schema.EntityNotification)
		if err != nil {
			return 0, apperrors.NewDatabaseError("notification.broadcast", err)
		}
		item[schema.AttrPK] = s(schema.NotificationPK(n.UserID))
		item[schema.AttrSK] = s(schema.NotificationSK(n.CreatedAt, n.ID))
		ops = append(ops, store.WriteOp{Put: item})
	}

	sent := 0
	for start := 0; start < len(ops); start += store.BatchLimit {
		end := start + store.BatchLimit
		if end > len(ops) {
			end = len(ops)
		}
		if err := r.store.BatchWrite(ctx, ops[start:end]); err != nil {
			return sent, apperrors.NewDatabaseError("notification.broadcast", err)
		}
		sent += end - start
	}
	return sent, nil
}

// NotificationPage is one page of notifications plus the resume key.
type NotificationPage struct {
	Notifications []*domain.Notification
	LastKey       store.Item
}

// ListByUser returns one user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int32, startKey store.Item) (*NotificationPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:       schema.NotificationPK(userID),
		SKPrefix: schema.NotificationPrefix(),
		Forward:  false,
		Limit:    limit,
		StartKey: startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("notification.listByUser", err)
	}

	page := &NotificationPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var n domain.Notification
		if err := unmarshalEntity(item, &n); err != nil {
			r.logger.Warn("skipping unparsable notification", zap.Error(err))
			continue
		}
		page.Notifications = append(page.Notifications, &n)
	}
	return page, nil
}

// MarkRead flags one notification as read. The caller supplies the full sort
// key parts because the item is addressed by creation time and ID together.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, createdAt, notificationID string) error {
	muts := []store.Mutation{
		store.SetValue("read", boolAttr(true)),
		store.Set("readAt", schema.FormatTime(time.Now())),
	}
	err := r.store.Update(ctx, schema.NotificationPK(userID), schema.NotificationSK(createdAt, notificationID), muts, true)
	if err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("notification")
		}
		return apperrors.NewDatabaseError("notification.markRead", err)
	}
	return nil
}

// CreateTemplate writes a reusable notification template.
func (r *NotificationRepository) CreateTemplate(ctx context.Context, t *domain.NotificationTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := schema.FormatTime(time.Now())
	t.CreatedAt = now
	t.UpdatedAt = now

	item, err := marshalEntity(t, schema.EntityTemplate)
	if err != nil {
		return apperrors.NewDatabaseError("notification.createTemplate", err)
	}
	item[schema.AttrPK] = s(schema.TemplatePK(t.ID))
	item[schema.AttrSK] = s(schema.TemplateSK())

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("template already exists")
		}
		return apperrors.NewDatabaseError("notification.createTemplate", err)
	}
	return nil
}

// FindTemplate is a point get, or NotFound.
func (r *NotificationRepository) FindTemplate(ctx context.Context, templateID string) (*domain.NotificationTemplate, error) {
	item, err := r.store.Get(ctx, schema.TemplatePK(templateID), schema.TemplateSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("notification.findTemplate", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("template")
	}
	var t domain.NotificationTemplate
	if err := unmarshalEntity(item, &t); err != nil {
		return nil, apperrors.NewDatabaseError("notification.findTemplate", err)
	}
	return &t, nil
}

// TemplatePatch carries the editable template fields; nil means keep.
type TemplatePatch struct {
	Name    *string
	Subject *string
	Body    *string
}

// UpdateTemplate edits a template in place.
func (r *NotificationRepository) UpdateTemplate(ctx context.Context, templateID string, patch TemplatePatch) (*domain.NotificationTemplate, error) {
	var muts []store.Mutation
	if patch.Name != nil {
		muts = append(muts, store.Set("name", *patch.Name))
	}
	if patch.Subject != nil {
		muts = append(muts, store.Set("subject", *patch.Subject))
	}
	if patch.Body != nil {
		muts = append(muts, store.Set("body", *patch.Body))
	}
	if len(muts) == 0 {
		return nil, apperrors.NewValidationError("no template fields to update")
	}
	muts = append(muts, store.Set("updatedAt", schema.FormatTime(time.Now())))

	if err := r.store.Update(ctx, schema.TemplatePK(templateID), schema.TemplateSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return nil, apperrors.NewNotFoundError("template")
		}
		return nil, apperrors.NewDatabaseError("notification.updateTemplate", err)
	}
	return r.FindTemplate(ctx, templateID)
}

// DeleteTemplate removes a template; absent templates are not an error.
func (r *NotificationRepository) DeleteTemplate(ctx context.Context, templateID string) error {
	if err := r.store.Delete(ctx, schema.TemplatePK(templateID), schema.TemplateSK()); err != nil {
		return apperrors.NewDatabaseError("notification.deleteTemplate", err)
	}
	return nil
}
