package repository

import (
	"context"
	"time"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// SettingsRepository owns the two singleton items in the SYSTEM partition:
// platform settings and security policies. Missing items read as defaults.
type SettingsRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewSettingsRepository creates a settings repository.
func NewSettingsRepository(st store.Store, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{store: st, logger: logger}
}

// DefaultSystemSettings are served until a super admin writes their own.
func DefaultSystemSettings() domain.SystemSettings {
	return domain.SystemSettings{
		SiteName:        "UpSkillPro",
		SupportEmail:    "support@upskillpro.example",
		Currency:        "USD",
		CommissionRate:  0.2,
		PaymentProvider: "stripe",
	}
}

// GetSettings reads the settings singleton, defaulting when absent.
func (r *SettingsRepository) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	item, err := r.store.Get(ctx, schema.SystemPK(), schema.SettingsSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("settings.get", err)
	}
	if item == nil {
		defaults := DefaultSystemSettings()
		return &defaults, nil
	}
	var settings domain.SystemSettings
	if err := unmarshalEntity(item, &settings); err != nil {
		return nil, apperrors.NewDatabaseError("settings.get", err)
	}
	return &settings, nil
}

// PutSettings replaces the settings singleton wholesale.
func (r *SettingsRepository) PutSettings(ctx context.Context, settings *domain.SystemSettings, updatedBy string) error {
	settings.UpdatedBy = updatedBy
	settings.UpdatedAt = schema.FormatTime(time.Now())

	item, err := marshalEntity(settings, schema.EntitySettings)
	if err != nil {
		return apperrors.NewDatabaseError("settings.put", err)
	}
	item[schema.AttrPK] = s(schema.SystemPK())
	item[schema.AttrSK] = s(schema.SettingsSK())

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("settings.put", err)
	}
	return nil
}

// GetSecurityPolicies reads the policy singleton, defaulting when absent.
func (r *SettingsRepository) GetSecurityPolicies(ctx context.Context) (*domain.SecurityPolicies, error) {
	item, err := r.store.Get(ctx, schema.SystemPK(), schema.SecurityPoliciesSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("settings.getPolicies", err)
	}
	if item == nil {
		defaults := domain.DefaultSecurityPolicies()
		return &defaults, nil
	}
	var policies domain.SecurityPolicies
	if err := unmarshalEntity(item, &policies); err != nil {
		return nil, apperrors.NewDatabaseError("settings.getPolicies", err)
	}
	return &policies, nil
}

// PutSecurityPolicies replaces the policy singleton wholesale.
func (r *SettingsRepository) PutSecurityPolicies(ctx context.Context, policies *domain.SecurityPolicies, updatedBy string) error {
	if policies.MaxFailedLogins <= 0 || policies.PasswordMinLength <= 0 || policies.SessionTimeoutMinutes <= 0 {
		return apperrors.NewValidationError("security policy limits must be positive")
	}
	policies.UpdatedBy = updatedBy
	policies.UpdatedAt = schema.FormatTime(time.Now())

	item, err := marshalEntity(policies, schema.EntitySettings)
	if err != nil {
		return apperrors.NewDatabaseError("settings.putPolicies", err)
	}
	item[schema.AttrPK] = s(schema.SystemPK())
	item[schema.AttrSK] = s(schema.SecurityPoliciesSK())

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("settings.putPolicies", err)
	}
	return nil
}
