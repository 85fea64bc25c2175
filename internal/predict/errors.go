package predict

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of prediction service error
type ErrorType string

const (
	// ErrTypeNetwork covers transport failures, timeouts and non-2xx statuses
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeService indicates the service answered with an error field or a malformed body
	ErrTypeService ErrorType = "service"

	// ErrTypeRequest indicates the request could not be built
	ErrTypeRequest ErrorType = "request"
)

// Error is returned by every Client call that fails
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by type
func (e *Error) Is(target error) bool {
	var pe *Error
	if errors.As(target, &pe) {
		return e.Type == pe.Type
	}
	return false
}

// NewError creates a prediction error
func NewError(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// NewErrorWithCause creates a prediction error wrapping cause
func NewErrorWithCause(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// NewStatusError reports a non-2xx response
func NewStatusError(statusCode int) *Error {
	return &Error{
		Type:       ErrTypeNetwork,
		Message:    fmt.Sprintf("HTTP error! status: %d", statusCode),
		StatusCode: statusCode,
	}
}

// IsServiceError reports whether err came from an error field in the response body
func IsServiceError(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Type == ErrTypeService
}
