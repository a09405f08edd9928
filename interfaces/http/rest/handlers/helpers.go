// Package handlers translates HTTP requests into repository and service
// calls and maps their results onto the wire envelopes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	"github.com/upskillpro/backend/interfaces/http/rest/middleware"
	"github.com/upskillpro/backend/pkg/auth"
	"github.com/upskillpro/backend/pkg/common"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"github.com/upskillpro/backend/pkg/pagination"
	"github.com/upskillpro/backend/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 50
)

// decodeBody parses and validates a JSON request body.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return utils.ValidateStruct(v)
}

// callerClaims returns the authenticated caller, or a 401 error on routes
// that somehow reached a handler without passing Authenticate.
func callerClaims(r *http.Request) (*auth.Claims, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil, apperrors.NewUnauthorizedError("")
	}
	return claims, nil
}

// pageParams parses ?limit= and ?lastKey= into a bounded page size and a
// decoded start key.
func pageParams(r *http.Request) (int32, store.Item, error) {
	limit := int32(defaultPageLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			return 0, nil, apperrors.NewValidationError("limit must be between 1 and 50")
		}
		limit = int32(n)
	}

	startKey, err := pagination.DecodeCursor(r.URL.Query().Get("lastKey"))
	if err != nil {
		return 0, nil, err
	}
	return limit, startKey, nil
}

// pagedResponse is the wire shape of every paginated listing.
type pagedResponse struct {
	Items   any    `json:"items"`
	LastKey string `json:"lastKey,omitempty"`
}

func respondPage(w http.ResponseWriter, items any, lastKey store.Item) {
	common.RespondJSON(w, http.StatusOK, pagedResponse{
		Items:   items,
		LastKey: pagination.EncodeCursor(lastKey),
	})
}

// Auditor appends audit records for privileged mutations. Failures are logged
// and swallowed so auditing never blocks the admin's operation.
type Auditor struct {
	audit  *repository.AuditRepository
	logger *zap.Logger
}

// NewAuditor creates an auditor.
func NewAuditor(audit *repository.AuditRepository, logger *zap.Logger) *Auditor {
	return &Auditor{audit: audit, logger: logger}
}

// Record writes one audit action for the request's caller.
func (a *Auditor) Record(ctx context.Context, r *http.Request, claims *auth.Claims, action, targetEntity string, previous, next any, reason string) {
	record := &domain.AdminAction{
		AdminID:       claims.UserID,
		Action:        action,
		TargetEntity:  targetEntity,
		PreviousValue: previous,
		NewValue:      next,
		Reason:        reason,
		IPAddress:     middleware.ClientIP(r),
		UserAgent:     r.UserAgent(),
	}
	if err := a.audit.Record(ctx, record); err != nil {
		a.logger.Warn("audit record not written",
			zap.String("action", action),
			zap.String("adminId", claims.UserID),
			zap.Error(err))
	}
}
