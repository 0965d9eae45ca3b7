// Package types provides common error types for proper error propagation
package types

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized error codes across the application
type ErrorCode string

const (
	// General errors
	ErrorCodeUnknown    ErrorCode = "UNKNOWN_ERROR"
	ErrorCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrorCodeConflict   ErrorCode = "CONFLICT"
	ErrorCodeForbidden  ErrorCode = "FORBIDDEN"

	// Release errors
	ErrorCodeReleaseNotFound   ErrorCode = "RELEASE_NOT_FOUND"
	ErrorCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrorCodeFieldImmutable    ErrorCode = "FIELD_IMMUTABLE"

	// Upload errors
	ErrorCodeUploadRejected ErrorCode = "UPLOAD_REJECTED"

	// Session errors
	ErrorCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrorCodeSessionExpired  ErrorCode = "SESSION_EXPIRED"
	ErrorCodeBadCredentials  ErrorCode = "BAD_CREDENTIALS"
	ErrorCodeInvalidToken    ErrorCode = "INVALID_TOKEN"
)

// ErrorSeverity indicates the severity of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// AppError represents a structured error with metadata
type AppError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Severity    ErrorSeverity          `json:"severity"`
	HTTPStatus  int                    `json:"http_status"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	UserMessage string                 `json:"user_message,omitempty"`

	// Chain of errors for debugging
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithUserMessage sets a user-friendly error message
func (e *AppError) WithUserMessage(message string) *AppError {
	e.UserMessage = message
	return e
}

// NewAppError creates a structured error
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Severity:   SeverityError,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewValidationError creates a validation error. Validation errors are caught
// before any database call is made.
func NewValidationError(message string, details ...string) *AppError {
	err := NewAppError(ErrorCodeValidation, message, http.StatusBadRequest)
	err.Severity = SeverityWarning
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// NewNotFoundError creates a not-found error, distinct from generic failure.
func NewNotFoundError(resource, id string) *AppError {
	err := NewAppError(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
	err.Severity = SeverityWarning
	if id != "" {
		err = err.WithContext("id", id)
	}
	return err
}

// NewForbiddenError creates a permission error
func NewForbiddenError(message string) *AppError {
	err := NewAppError(ErrorCodeForbidden, message, http.StatusForbidden)
	err.Severity = SeverityWarning
	return err
}

// NewInternalError creates an internal error with an underlying cause
func NewInternalError(message string, cause error) *AppError {
	err := NewAppError(ErrorCodeInternal, message, http.StatusInternalServerError)
	err.Cause = cause
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInvalidTransitionError creates an error for a status edge that is not in
// the transition table.
func NewInvalidTransitionError(from, trigger string) *AppError {
	err := NewAppError(ErrorCodeInvalidTransition,
		fmt.Sprintf("cannot %s a release in status %s", trigger, from),
		http.StatusConflict)
	err.Severity = SeverityWarning
	return err.WithContext("from", from).WithContext("trigger", trigger)
}
