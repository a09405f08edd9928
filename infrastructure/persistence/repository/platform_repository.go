package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// PlatformRepository owns backup records and maintenance windows. Both are
// real persisted state; completion and cancellation are explicit calls.
type PlatformRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewPlatformRepository creates a platform repository.
func NewPlatformRepository(st store.Store, logger *zap.Logger) *PlatformRepository {
	return &PlatformRepository{store: st, logger: logger}
}

// CreateBackup records a pending backup.
func (r *PlatformRepository) CreateBackup(ctx context.Context, backup *domain.Backup) error {
	if backup.ID == "" {
		backup.ID = uuid.NewString()
	}
	backup.Status = domain.BackupPending
	backup.CreatedAt = schema.FormatTime(time.Now())

	item, err := marshalEntity(backup, schema.EntityBackup)
	if err != nil {
		return apperrors.NewDatabaseError("platform.createBackup", err)
	}
	item[schema.AttrPK] = s(schema.BackupPK(backup.ID))
	item[schema.AttrSK] = s(schema.BackupSK())
	item[schema.AttrGSI1PK] = s(schema.BackupGSI1PK())
	item[schema.AttrGSI1SK] = s(schema.BackupGSI1SK(backup.CreatedAt))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("backup already exists")
		}
		return apperrors.NewDatabaseError("platform.createBackup", err)
	}
	return nil
}

// FindBackup is a point get, or NotFound.
func (r *PlatformRepository) FindBackup(ctx context.Context, backupID string) (*domain.Backup, error) {
	item, err := r.store.Get(ctx, schema.BackupPK(backupID), schema.BackupSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("platform.findBackup", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("backup")
	}
	var backup domain.Backup
	if err := unmarshalEntity(item, &backup); err != nil {
		return nil, apperrors.NewDatabaseError("platform.findBackup", err)
	}
	return &backup, nil
}

// CompleteBackup marks a pending backup completed or failed. Completed
// backups record their size.
func (r *PlatformRepository) CompleteBackup(ctx context.Context, backupID string, status domain.BackupStatus, sizeBytes int64) (*domain.Backup, error) {
	if status != domain.BackupCompleted && status != domain.BackupFailed {
		return nil, apperrors.NewValidationError("backup can only move to completed or failed").
			WithCode(apperrors.CodeInvalidTransition)
	}
	backup, err := r.FindBackup(ctx, backupID)
	if err != nil {
		return nil, err
	}
	if backup.Status != domain.BackupPending {
		return nil, apperrors.NewValidationError("backup is already finalized").
			WithCode(apperrors.CodeInvalidTransition)
	}

	muts := []store.Mutation{
		store.Set("status", string(status)),
		store.Set("completedAt", schema.FormatTime(time.Now())),
	}
	if status == domain.BackupCompleted && sizeBytes > 0 {
		muts = append(muts, store.Mutation{
			Attr:  "sizeBytes",
			Op:    store.OpSet,
			Value: numberAttr64(sizeBytes),
		})
	}
	if err := r.store.Update(ctx, schema.BackupPK(backupID), schema.BackupSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return nil, apperrors.NewNotFoundError("backup")
		}
		return nil, apperrors.NewDatabaseError("platform.completeBackup", err)
	}
	return r.FindBackup(ctx, backupID)
}

// BackupPage is one page of backups plus the resume key.
type BackupPage struct {
	Backups []*domain.Backup
	LastKey store.Item
}

// ListBackups returns backups newest first off GSI1.
func (r *PlatformRepository) ListBackups(ctx context.Context, limit int32, startKey store.Item) (*BackupPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.BackupGSI1PK(),
		IndexName: schema.IndexGSI1,
		Forward:   false,
		Limit:     limit,
		StartKey:  startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("platform.listBackups", err)
	}

	page := &BackupPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var backup domain.Backup
		if err := unmarshalEntity(item, &backup); err != nil {
			r.logger.Warn("skipping unparsable backup item", zap.Error(err))
			continue
		}
		page.Backups = append(page.Backups, &backup)
	}
	return page, nil
}

// ScheduleMaintenance records a scheduled maintenance window. The window must
// have a positive duration.
func (r *PlatformRepository) ScheduleMaintenance(ctx context.Context, window *domain.MaintenanceWindow) error {
	if window.StartsAt == "" || window.EndsAt == "" || window.EndsAt <= window.StartsAt {
		return apperrors.NewValidationError("maintenance window requires startsAt before endsAt")
	}
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	window.Status = domain.MaintenanceScheduled
	now := schema.FormatTime(time.Now())
	window.CreatedAt = now
	window.UpdatedAt = now

	item, err := marshalEntity(window, schema.EntityMaintenance)
	if err != nil {
		return apperrors.NewDatabaseError("platform.scheduleMaintenance", err)
	}
	item[schema.AttrPK] = s(schema.MaintenancePK(window.ID))
	item[schema.AttrSK] = s(schema.MaintenanceSK())
	item[schema.AttrGSI1PK] = s(schema.MaintenanceGSI1PK())
	item[schema.AttrGSI1SK] = s(schema.MaintenanceGSI1SK(window.StartsAt))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("maintenance window already exists")
		}
		return apperrors.NewDatabaseError("platform.scheduleMaintenance", err)
	}
	return nil
}

// FindMaintenance is a point get, or NotFound.
func (r *PlatformRepository) FindMaintenance(ctx context.Context, windowID string) (*domain.MaintenanceWindow, error) {
	item, err := r.store.Get(ctx, schema.MaintenancePK(windowID), schema.MaintenanceSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("platform.findMaintenance", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("maintenance window")
	}
	var window domain.MaintenanceWindow
	if err := unmarshalEntity(item, &window); err != nil {
		return nil, apperrors.NewDatabaseError("platform.findMaintenance", err)
	}
	return &window, nil
}

// canTransitionMaintenance follows scheduled -> active -> completed, with
// cancellation allowed until the window completes.
func canTransitionMaintenance(from, to domain.MaintenanceStatus) bool {
	switch from {
	case domain.MaintenanceScheduled:
		return to == domain.MaintenanceActive || to == domain.MaintenanceCancelled
	case domain.MaintenanceActive:
		return to == domain.MaintenanceCompleted || to == domain.MaintenanceCancelled
	}
	return false
}

// TransitionMaintenance moves a window through its lifecycle.
func (r *PlatformRepository) TransitionMaintenance(ctx context.Context, windowID string, to domain.MaintenanceStatus) (*domain.MaintenanceWindow, error) {
	window, err := r.FindMaintenance(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if !canTransitionMaintenance(window.Status, to) {
		return nil, apperrors.NewValidationError(
			"cannot move maintenance window from "+string(window.Status)+" to "+string(to)).
			WithCode(apperrors.CodeInvalidTransition)
	}

	muts := []store.Mutation{
		store.Set("status", string(to)),
		store.Set("updatedAt", schema.FormatTime(time.Now())),
	}
	if err := r.store.Update(ctx, schema.MaintenancePK(windowID), schema.MaintenanceSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return nil, apperrors.NewNotFoundError("maintenance window")
		}
		return nil, apperrors.NewDatabaseError("platform.transitionMaintenance", err)
	}
	return r.FindMaintenance(ctx, windowID)
}

// ListMaintenance returns maintenance windows ordered by start time off GSI1.
func (r *PlatformRepository) ListMaintenance(ctx context.Context, limit int32, startKey store.Item) ([]*domain.MaintenanceWindow, store.Item, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.MaintenanceGSI1PK(),
		IndexName: schema.IndexGSI1,
		Forward:   true,
		Limit:     limit,
		StartKey:  startKey,
	})
	if err != nil {
		return nil, nil, apperrors.NewDatabaseError("platform.listMaintenance", err)
	}

	var windows []*domain.MaintenanceWindow
	for _, item := range out.Items {
		var window domain.MaintenanceWindow
		if err := unmarshalEntity(item, &window); err != nil {
			r.logger.Warn("skipping unparsable maintenance item", zap.Error(err))
			continue
		}
		windows = append(windows, &window)
	}
	return windows, out.LastKey, nil
}

func numberAttr64(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}
