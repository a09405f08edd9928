// Package common holds the HTTP response helpers shared by all handlers.
package common

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/upskillpro/backend/pkg/errors"
)

// ErrorEnvelope is the wire shape of every error response.
type ErrorEnvelope struct {
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// RespondJSON writes v as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// RespondError writes an error envelope.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorEnvelope{Error: http.StatusText(status), Message: message, Code: code})
}

// RespondAppError maps an application error onto the envelope; unknown errors
// become opaque 500s so internals never leak to clients.
func RespondAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		RespondError(w, http.StatusInternalServerError, "", "internal server error")
		return
	}
	RespondJSON(w, appErr.HTTPStatus, ErrorEnvelope{
		Error:   string(appErr.Type),
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}
