package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func TestUserCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(), testLogger)

	user := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleStudent}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.Equal(t, domain.AccountActive, user.AccountStatus)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	byEmail, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(), testLogger)

	err := repo.Create(ctx, &domain.User{Name: "X", Email: "x@example.com", Role: "owner"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidRole, apperrors.GetAppError(err).Code)
}

func TestUserUpdateEmailMovesIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(), testLogger)

	user := &domain.User{Name: "Ada", Email: "old@example.com", Role: domain.RoleStudent}
	require.NoError(t, repo.Create(ctx, user))

	newEmail := "new@example.com"
	require.NoError(t, repo.Update(ctx, user.ID, UserPatch{Email: &newEmail}))

	found, err := repo.FindByEmail(ctx, newEmail)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "old@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserSuspendAndReactivate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(), testLogger)

	user := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleStudent}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.SetAccountStatus(ctx, user.ID, domain.AccountSuspended, "admin-1", "spam"))
	suspended, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, suspended.IsSuspended())
	assert.Equal(t, "admin-1", suspended.SuspendedBy)
	assert.Equal(t, "spam", suspended.SuspensionReason)

	require.NoError(t, repo.SetAccountStatus(ctx, user.ID, domain.AccountActive, "admin-1", ""))
	active, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, active.IsSuspended())
	assert.Empty(t, active.SuspendedBy)
	assert.Empty(t, active.SuspensionReason)
}

func TestUserLoginTracking(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(), testLogger)

	user := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleStudent}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdateLoginTracking(ctx, user.ID, false))
	require.NoError(t, repo.UpdateLoginTracking(ctx, user.ID, false))
	tracked, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tracked.FailedLoginAttempts)

	require.NoError(t, repo.UpdateLoginTracking(ctx, user.ID, true))
	tracked, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tracked.FailedLoginAttempts)
	assert.Equal(t, 1, tracked.LoginCount)
	assert.NotEmpty(t, tracked.LastLoginAt)
}

func TestUserListWithFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(), testLogger)

	for _, u := range []*domain.User{
		{Name: "S1", Email: "s1@example.com", Role: domain.RoleStudent},
		{Name: "S2", Email: "s2@example.com", Role: domain.RoleStudent},
		{Name: "I1", Email: "i1@example.com", Role: domain.RoleInstructor},
	} {
		require.NoError(t, repo.Create(ctx, u))
	}

	students, err := repo.ListWithFilter(ctx, UserFilter{Role: domain.RoleStudent})
	require.NoError(t, err)
	assert.Len(t, students, 2)

	instructors, err := repo.ListWithFilter(ctx, UserFilter{Role: domain.RoleInstructor, Limit: 10})
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	assert.Equal(t, "I1", instructors[0].Name)
}
