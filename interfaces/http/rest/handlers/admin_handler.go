package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// AdminHandler serves the privileged surface: user moderation, course
// approval, system settings, security policies and the audit read paths.
// Every mutation here emits one audit record.
type AdminHandler struct {
	users    *repository.UserRepository
	courses  *repository.CourseRepository
	settings *repository.SettingsRepository
	audit    *repository.AuditRepository
	auditor  *Auditor
	logger   *zap.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(
	users *repository.UserRepository,
	courses *repository.CourseRepository,
	settings *repository.SettingsRepository,
	audit *repository.AuditRepository,
	auditor *Auditor,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:    users,
		courses:  courses,
		settings: settings,
		audit:    audit,
		auditor:  auditor,
		logger:   logger,
	}
}

// ListUsers handles GET /api/admin/users?role=&accountStatus=&limit=.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	users, err := h.users.ListWithFilter(r.Context(), repository.UserFilter{
		Role:          domain.Role(q.Get("role")),
		AccountStatus: domain.AccountStatus(q.Get("accountStatus")),
		Limit:         int(limit),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/admin/users/{userID}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// ChangeRoleRequest is the role change body.
type ChangeRoleRequest struct {
	Role   string `json:"role" validate:"required,oneof=student instructor admin super_admin"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ChangeRole handles PUT /api/admin/users/{userID}/role.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ChangeRoleRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID := chi.URLParam(r, "userID")
	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	previous := user.Role
	role := domain.Role(req.Role)
	if err := h.users.Update(r.Context(), userID, repository.UserPatch{Role: &role}); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "change_role", "USER#"+userID,
		string(previous), req.Role, req.Reason)
	common.RespondJSON(w, http.StatusOK, map[string]string{"userId": userID, "role": req.Role})
}

// ChangeStatusRequest is the suspension body.
type ChangeStatusRequest struct {
	AccountStatus string `json:"accountStatus" validate:"required,oneof=active suspended"`
	Reason        string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ChangeStatus handles PUT /api/admin/users/{userID}/status.
func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ChangeStatusRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID := chi.URLParam(r, "userID")
	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	status := domain.AccountStatus(req.AccountStatus)
	if err := h.users.SetAccountStatus(r.Context(), userID, status, claims.UserID, req.Reason); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "change_account_status", "USER#"+userID,
		string(user.AccountStatus), req.AccountStatus, req.Reason)
	common.RespondJSON(w, http.StatusOK, map[string]string{"userId": userID, "accountStatus": req.AccountStatus})
}

// ModerateCourseRequest is the course moderation body.
type ModerateCourseRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected flagged"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ModerateCourse handles PUT /api/admin/courses/{courseID}/status. Admins may
// move a course between any approval states.
func (h *AdminHandler) ModerateCourse(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ModerateCourseRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	courseID := chi.URLParam(r, "courseID")
	course, err := h.courses.FindByID(r.Context(), courseID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	status := domain.CourseStatus(req.Status)
	if err := h.courses.SetStatus(r.Context(), courseID, status, claims.UserID, req.Reason); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "moderate_course", "COURSE#"+courseID,
		string(course.Status), req.Status, req.Reason)
	common.RespondJSON(w, http.StatusOK, map[string]string{"courseId": courseID, "status": req.Status})
}

// ListCoursesByStatus handles GET /api/admin/courses?status=pending.
func (h *AdminHandler) ListCoursesByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	courses, err := h.courses.FindAll(r.Context(), repository.CourseQuery{SortBy: repository.SortByCreatedAt, Descending: true})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if status != "" {
		if !domain.ValidCourseStatus(domain.CourseStatus(status)) {
			common.RespondAppError(w, apperrors.NewValidationError("unknown course status: "+status))
			return
		}
		filtered := courses[:0]
		for _, course := range courses {
			if course.Status == domain.CourseStatus(status) {
				filtered = append(filtered, course)
			}
		}
		courses = filtered
	}
	common.RespondJSON(w, http.StatusOK, courses)
}

// GetSettings handles GET /api/admin/settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, settings)
}

// UpdateSettingsRequest is the settings body, replaced wholesale.
type UpdateSettingsRequest struct {
	SiteName        string  `json:"siteName" validate:"required,min=1,max=100"`
	SupportEmail    string  `json:"supportEmail" validate:"required,email"`
	Currency        string  `json:"currency" validate:"required,oneof=USD EUR GBP"`
	CommissionRate  float64 `json:"commissionRate" validate:"gte=0,lte=1"`
	PaymentProvider string  `json:"paymentProvider" validate:"required,oneof=stripe paypal"`
	MaintenanceMode bool    `json:"maintenanceMode"`
}

// UpdateSettings handles PUT /api/admin/settings.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	previous, err := h.settings.GetSettings(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	settings := &domain.SystemSettings{
		SiteName:        req.SiteName,
		SupportEmail:    req.SupportEmail,
		Currency:        req.Currency,
		CommissionRate:  req.CommissionRate,
		PaymentProvider: req.PaymentProvider,
		MaintenanceMode: req.MaintenanceMode,
	}
	if err := h.settings.PutSettings(r.Context(), settings, claims.UserID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "update_settings", "SYSTEM", previous, settings, "")
	common.RespondJSON(w, http.StatusOK, settings)
}

// GetSecurityPolicies handles GET /api/admin/security/policies.
func (h *AdminHandler) GetSecurityPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.settings.GetSecurityPolicies(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, policies)
}

// UpdateSecurityPoliciesRequest is the security policy body.
type UpdateSecurityPoliciesRequest struct {
	MaxFailedLogins       int      `json:"maxFailedLogins" validate:"required,gte=1,lte=20"`
	SessionTimeoutMinutes int      `json:"sessionTimeoutMinutes" validate:"required,gte=5,lte=1440"`
	PasswordMinLength     int      `json:"passwordMinLength" validate:"required,gte=6,lte=64"`
	AllowedIPRanges       []string `json:"allowedIpRanges,omitempty" validate:"omitempty,dive,cidr"`
}

// UpdateSecurityPolicies handles PUT /api/admin/security/policies. Policy
// changes are both audited and recorded as security events.
func (h *AdminHandler) UpdateSecurityPolicies(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateSecurityPoliciesRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	previous, err := h.settings.GetSecurityPolicies(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	policies := &domain.SecurityPolicies{
		MaxFailedLogins:       req.MaxFailedLogins,
		SessionTimeoutMinutes: req.SessionTimeoutMinutes,
		PasswordMinLength:     req.PasswordMinLength,
		AllowedIPRanges:       req.AllowedIPRanges,
	}
	if err := h.settings.PutSecurityPolicies(r.Context(), policies, claims.UserID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.auditor.Record(r.Context(), r, claims, "update_security_policies", "SYSTEM", previous, policies, "")
	if err := h.audit.RecordSecurityEvent(r.Context(), &domain.SecurityEvent{
		Type:   domain.SecurityEventPolicyChange,
		UserID: claims.UserID,
		Detail: "security policies updated",
	}); err != nil {
		h.logger.Warn("policy-change event not recorded", zap.Error(err))
	}
	common.RespondJSON(w, http.StatusOK, policies)
}

// AuditHistory handles GET /api/admin/audit/{adminID}?startDate=&endDate=.
func (h *AdminHandler) AuditHistory(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	q := r.URL.Query()
	page, err := h.audit.ListByAdmin(r.Context(), chi.URLParam(r, "adminID"),
		repository.AuditRange{Start: q.Get("startDate"), End: q.Get("endDate")}, limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Actions, page.LastKey)
}

// AuditReport handles GET /api/admin/audit/report?startDate=&endDate=&action=.
func (h *AdminHandler) AuditReport(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	q := r.URL.Query()
	page, err := h.audit.Report(r.Context(), repository.ReportQuery{
		Range:  repository.AuditRange{Start: q.Get("startDate"), End: q.Get("endDate")},
		Action: q.Get("action"),
		Limit:  limit,
	}, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Actions, page.LastKey)
}

// SecurityEvents handles GET /api/admin/security/events/{eventType}.
func (h *AdminHandler) SecurityEvents(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.audit.ListSecurityEvents(r.Context(), chi.URLParam(r, "eventType"), limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Events, page.LastKey)
}
