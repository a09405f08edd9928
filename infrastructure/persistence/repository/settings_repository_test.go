package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func TestSettingsDefaultsUntilWritten(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestStore(), testLogger)

	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UpSkillPro", settings.SiteName)
	assert.Equal(t, "USD", settings.Currency)

	settings.Currency = "EUR"
	settings.CommissionRate = 0.25
	require.NoError(t, repo.PutSettings(ctx, settings, "admin-1"))

	stored, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", stored.Currency)
	assert.Equal(t, 0.25, stored.CommissionRate)
	assert.Equal(t, "admin-1", stored.UpdatedBy)
	assert.NotEmpty(t, stored.UpdatedAt)
}

func TestSecurityPoliciesDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestStore(), testLogger)

	policies, err := repo.GetSecurityPolicies(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSecurityPolicies().PasswordMinLength, policies.PasswordMinLength)

	policies.PasswordMinLength = 12
	policies.MaxFailedLogins = 3
	require.NoError(t, repo.PutSecurityPolicies(ctx, policies, "admin-1"))

	stored, err := repo.GetSecurityPolicies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.PasswordMinLength)
	assert.Equal(t, 3, stored.MaxFailedLogins)

	bad := domain.DefaultSecurityPolicies()
	bad.MaxFailedLogins = 0
	err = repo.PutSecurityPolicies(ctx, &bad, "admin-1")
	assert.True(t, apperrors.IsValidation(err))
}
