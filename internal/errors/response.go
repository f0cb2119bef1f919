package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorDetail is the client-facing representation of an error.
type ErrorDetail struct {
	Message      string         `json:"message"`
	InternalOnly string         `json:"internal_error,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope returned by every HTTP handler.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse converts any error into the client-facing envelope. Hints
// take precedence over raw error strings so internal messages never leak for
// classified errors.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: err.Error(),
		},
	}

	var internal *InternalError
	if errors.As(err, &internal) {
		if internal.hint != "" {
			resp.Error.Message = internal.hint
			resp.Error.InternalOnly = internal.Error()
		}
		resp.Error.Details = internal.reportableDetails
	}
	return resp
}

// HTTPStatusFromErr maps the error classification to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsVersionConflict(err):
		return http.StatusConflict
	case IsValidation(err):
		return http.StatusBadRequest
	case IsInvalidOperation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
