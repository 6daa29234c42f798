package errors

import (
	"medtrack/internal/errors"
)

// ErrorInfo is the flat rendering of an error for command-line output.
type ErrorInfo struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`              // Business error code, e.g., "USER_NOT_FOUND"
	Message string `json:"message"`           // User-friendly error message
	Details string `json:"details,omitempty"` // Detailed error information (optional)
}

// Describe flattens err. Errors without an AppError in their chain are
// reported as storage failures carrying the raw error text.
func Describe(err error) *ErrorInfo {
	if err == nil {
		return nil
	}

	var appErr AppError
	if !errors.As(err, &appErr) {
		return &ErrorInfo{
			Kind:    KindStorage,
			Code:    "INTERNAL",
			Message: err.Error(),
		}
	}

	return &ErrorInfo{
		Kind:    appErr.Kind(),
		Code:    appErr.ErrorCode(),
		Message: appErr.Message(),
		Details: appErr.Details(),
	}
}

// String renders the info as "[CODE] message: details".
func (i *ErrorInfo) String() string {
	s := "[" + i.Code + "] " + i.Message
	if i.Details != "" {
		s += ": " + i.Details
	}

	return s
}
