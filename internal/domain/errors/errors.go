package errors

import (
	"medtrack/internal/errors"
)

// Kind classifies an application error for callers that branch on failure type.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindReference  Kind = "reference"
	KindDuplicate  Kind = "duplicate"
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	Kind() Kind        // Failure classification
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind      Kind
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, errorCode, message, details string) *BaseError {
	return &BaseError{
		kind:      kind,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details == "" {
		return e.message
	}

	return e.message + ": " + e.details
}

// Is matches any BaseError carrying the same error code, so copies made by
// WithDetails still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) Kind() Kind {
	return e.kind
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		kind:      e.kind,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Lookup errors
	ErrUserNotFound = NewBaseError(
		KindNotFound,
		"USER_NOT_FOUND",
		"user not found",
		"",
	)

	ErrMedicineNotFound = NewBaseError(
		KindNotFound,
		"MEDICINE_NOT_FOUND",
		"medicine not found",
		"",
	)

	ErrOrderNotFound = NewBaseError(
		KindNotFound,
		"ORDER_NOT_FOUND",
		"order not found",
		"",
	)

	// Foreign key errors
	ErrUserReference = NewBaseError(
		KindReference,
		"USER_REFERENCE",
		"referenced user does not exist",
		"",
	)

	ErrMedicineReference = NewBaseError(
		KindReference,
		"MEDICINE_REFERENCE",
		"referenced medicine does not exist",
		"",
	)

	// Uniqueness errors
	ErrDuplicateMedicine = NewBaseError(
		KindDuplicate,
		"DUPLICATE_MEDICINE",
		"medicine with this name already exists for this user",
		"",
	)

	// Validation errors
	ErrInvalidQuantity = NewBaseError(
		KindValidation,
		"INVALID_QUANTITY",
		"quantity must be greater than 0",
		"",
	)

	ErrValidationFailed = NewBaseError(
		KindValidation,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		KindStorage,
		"TRANSACTION_FAILED",
		"database transaction failed",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the engine error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) Kind() Kind {
	return KindStorage
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// KindOf returns the kind of the first AppError in err's chain, or KindStorage
// for errors that carry no classification.
func KindOf(err error) Kind {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindStorage
}

// DisplayMessage renders err for an end user, preferring the AppError message.
func DisplayMessage(err error, fallback string) string {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return fallback
	}

	if details := appErr.Details(); details != "" {
		return appErr.Message() + ": " + details
	}

	return appErr.Message()
}
