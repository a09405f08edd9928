// Package services holds the application layer: orchestration that spans
// repositories but owns no persistence of its own.
package services

import (
	"context"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/auth"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup and login: password hashing, credential checks,
// login tracking and session token issuance.
type AuthService struct {
	users    *repository.UserRepository
	audit    *repository.AuditRepository
	settings *repository.SettingsRepository
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(
	users *repository.UserRepository,
	audit *repository.AuditRepository,
	settings *repository.SettingsRepository,
	tokens *auth.TokenIssuer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{users: users, audit: audit, settings: settings, tokens: tokens, logger: logger}
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthResult is a signed-in session: the user plus their token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Signup registers a new account. Email uniqueness is checked up front for a
// friendly error; the conditional write still backstops races. Privileged
// roles cannot be self-assigned.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if in.Role == "" {
		in.Role = domain.RoleStudent
	}
	if in.Role != domain.RoleStudent && in.Role != domain.RoleInstructor {
		return nil, apperrors.NewValidationError("role must be student or instructor").
			WithCode(apperrors.CodeInvalidRole)
	}

	policies, err := s.settings.GetSecurityPolicies(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < policies.PasswordMinLength {
		return nil, apperrors.NewValidationError("password is too short")
	}

	if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.NewConflictError("an account with this email already exists").
			WithCode(apperrors.CodeEmailExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("hash password").WithCause(err)
	}

	user := &domain.User{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  string(hash),
		Role:          in.Role,
		AccountStatus: domain.AccountActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.NewConflictError("an account with this email already exists").
				WithCode(apperrors.CodeEmailExists)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.NewInternalError("issue token").WithCause(err)
	}
	s.logger.Info("user signed up", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return &AuthResult{User: user, Token: token}, nil
}

// LoginInput is a login request with the caller's transport metadata.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// Login authenticates credentials. Unknown emails and wrong passwords return
// the same opaque 401. Suspended accounts get a 403 naming the status so the
// client can explain the lockout. Login tracking and security events are best
// effort and never fail the request.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.recordSecurityEvent(ctx, domain.SecurityEventFailedLogin, "", in)
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.trackLogin(ctx, user.ID, false)
		s.recordSecurityEvent(ctx, domain.SecurityEventFailedLogin, user.ID, in)
		return nil, invalidCredentials()
	}

	if user.IsSuspended() {
		s.recordSecurityEvent(ctx, domain.SecurityEventSuspendedLogin, user.ID, in)
		return nil, apperrors.NewForbiddenError("account is suspended").
			WithCode(apperrors.CodeAccountSuspended).
			WithDetails(map[string]any{"accountStatus": string(domain.AccountSuspended)})
	}

	s.trackLogin(ctx, user.ID, true)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.NewInternalError("issue token").WithCause(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ChangePassword verifies the current password before writing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return invalidCredentials()
	}

	policies, err := s.settings.GetSecurityPolicies(ctx)
	if err != nil {
		return err
	}
	if len(next) < policies.PasswordMinLength {
		return apperrors.NewValidationError("password is too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.NewInternalError("hash password").WithCause(err)
	}
	hashStr := string(hash)
	return s.users.Update(ctx, userID, repository.UserPatch{PasswordHash: &hashStr})
}

func (s *AuthService) trackLogin(ctx context.Context, userID string, success bool) {
	if err := s.users.UpdateLoginTracking(ctx, userID, success); err != nil {
		s.logger.Warn("login tracking failed", zap.String("userId", userID), zap.Error(err))
	}
}

func (s *AuthService) recordSecurityEvent(ctx context.Context, eventType, userID string, in LoginInput) {
	event := &domain.SecurityEvent{
		Type:      eventType,
		UserID:    userID,
		Email:     in.Email,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if err := s.audit.RecordSecurityEvent(ctx, event); err != nil {
		s.logger.Warn("security event not recorded", zap.String("type", eventType), zap.Error(err))
	}
}

func invalidCredentials() *apperrors.AppError {
	return apperrors.NewUnauthorizedError("invalid email or password").
		WithCode(apperrors.CodeInvalidCredentials)
}
