package apperror

import (
	"errors"
	"net/http"
	"time"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code       int           // HTTP Status Code (e.g., 400, 404)
	Message    string        // User-facing error message
	Field      string        // Offending input field for validation failures
	ErrorCode  string        // Internal code written to the server log, never to the client
	RetryAfter time.Duration // Set on throttling errors
	Err        error         // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a 400 error naming the offending field.
func Validation(field, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Field:   field,
	}
}

// Internal wraps a storage or infrastructure failure. The message shown to
// clients is generic; errorCode and err are only logged.
func Internal(err error, errorCode string) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		Message:   "internal server error",
		ErrorCode: errorCode,
		Err:       err,
	}
}

// OrInternal passes AppErrors through unchanged and wraps anything else with
// Internal. A nil err stays nil.
func OrInternal(err error, errorCode string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(err, errorCode)
}

// RateLimited creates a 429 error carrying the time until the caller may retry.
func RateLimited(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       http.StatusTooManyRequests,
		Message:    "Too many requests. Please try again later.",
		RetryAfter: retryAfter,
	}
}
