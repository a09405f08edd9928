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

// Scan-loop bounds for filtered user listings. Selectivity can be low, so
// each page over-fetches and the loop is capped to bound worst-case latency.
const (
	userScanMaxPages    = 10
	userScanMinPageSize = 250
)

// UserRepository owns the USER#<id>/PROFILE items and the GSI4 email lookup.
type UserRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewUserRepository creates a user repository.
func NewUserRepository(st store.Store, logger *zap.Logger) *UserRepository {
	return &UserRepository{store: st, logger: logger}
}

// UserPatch is the attribute set Update may change. Nil fields are left
// untouched.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *domain.Role
}

// UserFilter narrows ListWithFilter.
type UserFilter struct {
	Role          domain.Role
	AccountStatus domain.AccountStatus
	Limit         int
}

// Create writes a new profile conditioned on the ID being unused, making
// signup idempotent: the second write with the same ID fails the condition.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if !domain.ValidRole(user.Role) {
		return apperrors.NewValidationError("invalid role").WithCode(apperrors.CodeInvalidRole)
	}
	now := schema.FormatTime(time.Now())
	user.AccountStatus = domain.AccountActive
	user.CreatedAt = now
	user.UpdatedAt = now

	item, err := marshalEntity(user, schema.EntityUser)
	if err != nil {
		return apperrors.NewDatabaseError("user.create", err)
	}
	item[schema.AttrPK] = s(schema.UserPK(user.ID))
	item[schema.AttrSK] = s(schema.UserSK())
	item[schema.AttrGSI4PK] = s(schema.UserGSI4PK(user.Email))
	item[schema.AttrGSI4SK] = s(schema.UserGSI4SK())

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("user already exists")
		}
		return apperrors.NewDatabaseError("user.create", err)
	}
	return nil
}

// FindByID is a point get on the profile item.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	item, err := r.store.Get(ctx, schema.UserPK(userID), schema.UserSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("user.findById", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("user")
	}
	var user domain.User
	if err := unmarshalEntity(item, &user); err != nil {
		return nil, apperrors.NewDatabaseError("user.findById", err)
	}
	return &user, nil
}

// FindByEmail queries GSI4 and returns the first match, or NotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.UserGSI4PK(email),
		IndexName: schema.IndexGSI4,
		Forward:   true,
		Limit:     1,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("user.findByEmail", err)
	}
	if len(out.Items) == 0 {
		return nil, apperrors.NewNotFoundError("user")
	}
	var user domain.User
	if err := unmarshalEntity(out.Items[0], &user); err != nil {
		return nil, apperrors.NewDatabaseError("user.findByEmail", err)
	}
	return &user, nil
}

// Update applies the supplied attribute set as one dynamic update expression.
// When the email changes, the GSI4 partition key is rewritten in the same
// update so the email index never diverges from the profile.
func (r *UserRepository) Update(ctx context.Context, userID string, patch UserPatch) error {
	var muts []store.Mutation
	if patch.Name != nil {
		muts = append(muts, store.Set("name", *patch.Name))
	}
	if patch.Email != nil {
		muts = append(muts,
			store.Set("email", *patch.Email),
			store.Set(schema.AttrGSI4PK, schema.UserGSI4PK(*patch.Email)),
		)
	}
	if patch.PasswordHash != nil {
		muts = append(muts, store.Set("passwordHash", *patch.PasswordHash))
	}
	if patch.Role != nil {
		if !domain.ValidRole(*patch.Role) {
			return apperrors.NewValidationError("invalid role").WithCode(apperrors.CodeInvalidRole)
		}
		muts = append(muts, store.Set("role", string(*patch.Role)))
	}
	if len(muts) == 0 {
		return apperrors.NewValidationError("empty update")
	}
	muts = append(muts, store.Set("updatedAt", schema.FormatTime(time.Now())))

	if err := r.store.Update(ctx, schema.UserPK(userID), schema.UserSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("user")
		}
		return apperrors.NewDatabaseError("user.update", err)
	}
	return nil
}

// SetAccountStatus suspends or reactivates an account. Suspension records who
// and why; reactivation removes those attributes.
func (r *UserRepository) SetAccountStatus(ctx context.Context, userID string, status domain.AccountStatus, adminID, reason string) error {
	now := schema.FormatTime(time.Now())
	muts := []store.Mutation{
		store.Set("accountStatus", string(status)),
		store.Set("updatedAt", now),
	}
	if status == domain.AccountSuspended {
		muts = append(muts,
			store.Set("suspendedBy", adminID),
			store.Set("suspendedAt", now),
			store.Set("suspensionReason", reason),
		)
	} else {
		muts = append(muts,
			store.Remove("suspendedBy"),
			store.Remove("suspendedAt"),
			store.Remove("suspensionReason"),
		)
	}

	if err := r.store.Update(ctx, schema.UserPK(userID), schema.UserSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("user")
		}
		return apperrors.NewDatabaseError("user.setAccountStatus", err)
	}
	return nil
}

// UpdateLoginTracking records a login attempt. Success sets lastLoginAt,
// increments loginCount and resets failedLoginAttempts; failure only
// increments failedLoginAttempts. Counters are if_not_exists-guarded so the
// first write succeeds on profiles that predate the counters.
func (r *UserRepository) UpdateLoginTracking(ctx context.Context, userID string, success bool) error {
	var muts []store.Mutation
	if success {
		muts = []store.Mutation{
			store.Set("lastLoginAt", schema.FormatTime(time.Now())),
			store.Add("loginCount", 1),
			store.SetValue("failedLoginAttempts", store.NumberValue(0)),
		}
	} else {
		muts = []store.Mutation{store.Add("failedLoginAttempts", 1)}
	}

	if err := r.store.Update(ctx, schema.UserPK(userID), schema.UserSK(), muts, true); err != nil {
		return apperrors.NewDatabaseError("user.updateLoginTracking", err)
	}
	return nil
}

// ListWithFilter scans for users matching the filter. The store returns one
// page at a time, so this drives the bounded re-invocation loop: up to ten
// pages of max(5 x desired, 250) items each.
func (r *UserRepository) ListWithFilter(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	pageSize := int32(5 * limit)
	if pageSize < userScanMinPageSize {
		pageSize = userScanMinPageSize
	}

	scanFilter := store.ScanFilter{EntityType: schema.EntityUser, Equals: map[string]string{}}
	if filter.Role != "" {
		scanFilter.Equals["role"] = string(filter.Role)
	}
	if filter.AccountStatus != "" {
		scanFilter.Equals["accountStatus"] = string(filter.AccountStatus)
	}

	var users []*domain.User
	var startKey store.Item
	for page := 0; page < userScanMaxPages; page++ {
		out, err := r.store.Scan(ctx, store.ScanInput{
			Filter:   scanFilter,
			Limit:    pageSize,
			StartKey: startKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("user.listWithFilter", err)
		}
		for _, item := range out.Items {
			var user domain.User
			if err := unmarshalEntity(item, &user); err != nil {
				r.logger.Warn("skipping unparsable user item", zap.Error(err))
				continue
			}
			users = append(users, &user)
			if len(users) == limit {
				return users, nil
			}
		}
		if out.LastKey == nil {
			break
		}
		startKey = out.LastKey
	}
	return users, nil
}
