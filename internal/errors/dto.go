package errors

import (
	"github.com/cockroachdb/errors"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the user-facing response for an error: the hint
// chain becomes the display message, the internal chain stays separate.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	display := errors.FlattenHints(err)
	if display == "" {
		display = "An unexpected error occurred"
	}

	return &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Display:       display,
			InternalError: err.Error(),
		},
	}
}
