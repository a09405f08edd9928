package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func TestEnrollmentDuplicateConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository(newTestStore(), testLogger)

	first := &domain.Enrollment{UserID: "u1", CourseID: "c1", CourseTitle: "Go", CoursePrice: 20}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &domain.Enrollment{UserID: "u1", CourseID: "c1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, apperrors.CodeAlreadyEnrolled, apperrors.GetAppError(err).Code)

	// A different course is fine.
	require.NoError(t, repo.Create(ctx, &domain.Enrollment{UserID: "u1", CourseID: "c2"}))
}

func TestEnrollmentListingsAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Enrollment{UserID: "u1", CourseID: "c1"}))
	require.NoError(t, repo.Create(ctx, &domain.Enrollment{UserID: "u2", CourseID: "c1"}))
	require.NoError(t, repo.Create(ctx, &domain.Enrollment{UserID: "u1", CourseID: "c2"}))

	mine, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	onCourse, err := repo.FindByCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, onCourse, 2)

	count, err := repo.CountByCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.CountByCourse(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEnrollmentProgressLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Enrollment{UserID: "u1", CourseID: "c1"}))

	require.NoError(t, repo.UpdateProgress(ctx, "u1", "c1", ProgressUpdate{Progress: []string{"l1"}}))
	enrollment, err := repo.FindByUserAndCourse(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, enrollment.Progress)
	assert.Empty(t, enrollment.CompletedAt)

	done := "2026-01-02T03:04:05.000Z"
	require.NoError(t, repo.UpdateProgress(ctx, "u1", "c1", ProgressUpdate{
		Progress:    []string{"l1", "l2"},
		CompletedAt: done,
	}))
	enrollment, err = repo.FindByUserAndCourse(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, done, enrollment.CompletedAt)

	require.NoError(t, repo.UpdateProgress(ctx, "u1", "c1", ProgressUpdate{
		Progress:         []string{"l1"},
		ClearCompletedAt: true,
	}))
	enrollment, err = repo.FindByUserAndCourse(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Empty(t, enrollment.CompletedAt)

	err = repo.UpdateProgress(ctx, "ghost", "c1", ProgressUpdate{Progress: []string{"l1"}})
	assert.True(t, apperrors.IsNotFound(err))
}
