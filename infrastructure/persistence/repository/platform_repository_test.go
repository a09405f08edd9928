package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func TestBackupLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewPlatformRepository(newTestStore(), testLogger)

	backup := &domain.Backup{InitiatedBy: "admin-1", Note: "pre-release"}
	require.NoError(t, repo.CreateBackup(ctx, backup))
	assert.Equal(t, domain.BackupPending, backup.Status)

	completed, err := repo.CompleteBackup(ctx, backup.ID, domain.BackupCompleted, 1024)
	require.NoError(t, err)
	assert.Equal(t, domain.BackupCompleted, completed.Status)
	assert.Equal(t, int64(1024), completed.SizeBytes)
	assert.NotEmpty(t, completed.CompletedAt)

	// Completion is one-shot.
	_, err = repo.CompleteBackup(ctx, backup.ID, domain.BackupFailed, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.GetAppError(err).Code)
}

func TestBackupListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewPlatformRepository(newTestStore(), testLogger)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateBackup(ctx, &domain.Backup{InitiatedBy: "admin-1"}))
	}

	page, err := repo.ListBackups(ctx, 10, nil)
	require.NoError(t, err)
	assert.Len(t, page.Backups, 3)
}

func TestMaintenanceLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewPlatformRepository(newTestStore(), testLogger)

	window := &domain.MaintenanceWindow{
		Title:     "DB upgrade",
		StartsAt:  "2026-09-01T02:00:00.000Z",
		EndsAt:    "2026-09-01T04:00:00.000Z",
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.ScheduleMaintenance(ctx, window))
	assert.Equal(t, domain.MaintenanceScheduled, window.Status)

	active, err := repo.TransitionMaintenance(ctx, window.ID, domain.MaintenanceActive)
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceActive, active.Status)

	completedWindow, err := repo.TransitionMaintenance(ctx, window.ID, domain.MaintenanceCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceCompleted, completedWindow.Status)

	_, err = repo.TransitionMaintenance(ctx, window.ID, domain.MaintenanceActive)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.GetAppError(err).Code)
}

func TestMaintenanceRequiresOrderedWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewPlatformRepository(newTestStore(), testLogger)

	err := repo.ScheduleMaintenance(ctx, &domain.MaintenanceWindow{
		Title:    "Backwards",
		StartsAt: "2026-09-01T04:00:00.000Z",
		EndsAt:   "2026-09-01T02:00:00.000Z",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestMaintenanceCancellation(t *testing.T) {
	ctx := context.Background()
	repo := NewPlatformRepository(newTestStore(), testLogger)

	window := &domain.MaintenanceWindow{
		Title:    "Optional",
		StartsAt: "2026-09-01T02:00:00.000Z",
		EndsAt:   "2026-09-01T04:00:00.000Z",
	}
	require.NoError(t, repo.ScheduleMaintenance(ctx, window))

	cancelled, err := repo.TransitionMaintenance(ctx, window.ID, domain.MaintenanceCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceCancelled, cancelled.Status)

	windows, _, err := repo.ListMaintenance(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, windows, 1)
}
