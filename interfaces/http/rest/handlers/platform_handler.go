package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	"go.uber.org/zap"
)

// PlatformHandler serves backups and maintenance windows. Both are persisted
// records with explicit lifecycle calls, not timers.
type PlatformHandler struct {
	platform *repository.PlatformRepository
	auditor  *Auditor
	logger   *zap.Logger
}

// NewPlatformHandler creates a platform handler.
func NewPlatformHandler(platform *repository.PlatformRepository, auditor *Auditor, logger *zap.Logger) *PlatformHandler {
	return &PlatformHandler{platform: platform, auditor: auditor, logger: logger}
}

// CreateBackupRequest is the backup creation body.
type CreateBackupRequest struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CreateBackup handles POST /api/admin/backups.
func (h *PlatformHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateBackupRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	backup := &domain.Backup{InitiatedBy: claims.UserID, Note: req.Note}
	if err := h.platform.CreateBackup(r.Context(), backup); err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "create_backup", "BACKUP#"+backup.ID, nil, nil, req.Note)
	common.RespondJSON(w, http.StatusCreated, backup)
}

// CompleteBackupRequest finalizes a pending backup.
type CompleteBackupRequest struct {
	Status    string `json:"status" validate:"required,oneof=completed failed"`
	SizeBytes int64  `json:"sizeBytes,omitempty" validate:"omitempty,gte=0"`
}

// CompleteBackup handles PUT /api/admin/backups/{backupID}.
func (h *PlatformHandler) CompleteBackup(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CompleteBackupRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	backupID := chi.URLParam(r, "backupID")
	backup, err := h.platform.CompleteBackup(r.Context(), backupID, domain.BackupStatus(req.Status), req.SizeBytes)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "complete_backup", "BACKUP#"+backupID, nil, req.Status, "")
	common.RespondJSON(w, http.StatusOK, backup)
}

// ListBackups handles GET /api/admin/backups, newest first.
func (h *PlatformHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	page, err := h.platform.ListBackups(r.Context(), limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, page.Backups, page.LastKey)
}

// ScheduleMaintenanceRequest is the maintenance scheduling body. Times are
// ISO-8601 UTC.
type ScheduleMaintenanceRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Message  string `json:"message,omitempty" validate:"omitempty,max=2000"`
	StartsAt string `json:"startsAt" validate:"required"`
	EndsAt   string `json:"endsAt" validate:"required"`
}

// ScheduleMaintenance handles POST /api/admin/maintenance.
func (h *PlatformHandler) ScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ScheduleMaintenanceRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	window := &domain.MaintenanceWindow{
		Title:     req.Title,
		Message:   req.Message,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		CreatedBy: claims.UserID,
	}
	if err := h.platform.ScheduleMaintenance(r.Context(), window); err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "schedule_maintenance", "MAINTENANCE#"+window.ID, nil, req.Title, "")
	common.RespondJSON(w, http.StatusCreated, window)
}

// TransitionMaintenanceRequest moves a window through its lifecycle.
type TransitionMaintenanceRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed cancelled"`
}

// TransitionMaintenance handles PUT /api/admin/maintenance/{windowID}/status.
func (h *PlatformHandler) TransitionMaintenance(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req TransitionMaintenanceRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	windowID := chi.URLParam(r, "windowID")
	window, err := h.platform.TransitionMaintenance(r.Context(), windowID, domain.MaintenanceStatus(req.Status))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.auditor.Record(r.Context(), r, claims, "transition_maintenance", "MAINTENANCE#"+windowID, nil, req.Status, "")
	common.RespondJSON(w, http.StatusOK, window)
}

// ListMaintenance handles GET /api/admin/maintenance, ordered by start time.
func (h *PlatformHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	limit, startKey, err := pageParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	windows, lastKey, err := h.platform.ListMaintenance(r.Context(), limit, startKey)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	respondPage(w, windows, lastKey)
}
