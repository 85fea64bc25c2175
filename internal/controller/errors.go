package controller

import (
	"errors"
	"fmt"

	"github.com/yildizm/LungScan/internal/predict"
)

// ErrorKind categorizes failures surfaced to the user
type ErrorKind string

const (
	// KindInvalidInputType means the selected file is not an allowed image type
	KindInvalidInputType ErrorKind = "invalid_input_type"

	// KindNoInputSelected means analysis was requested with nothing selected
	KindNoInputSelected ErrorKind = "no_input_selected"

	// KindNetwork covers transport failures, timeouts and non-2xx responses
	KindNetwork ErrorKind = "network"

	// KindServiceReported means the service answered with an error of its own
	KindServiceReported ErrorKind = "service_reported"
)

// Error is a user-visible failure. None of them are fatal to the controller.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind
func (e *Error) Is(target error) bool {
	var ce *Error
	if errors.As(target, &ce) {
		return e.Kind == ce.Kind
	}
	return false
}

// Sentinels for errors.Is
var (
	ErrInvalidInputType        = &Error{Kind: KindInvalidInputType}
	ErrNoInputSelected         = &Error{Kind: KindNoInputSelected}
	ErrNetworkOrServiceFailure = &Error{Kind: KindNetwork}
	ErrServiceReported         = &Error{Kind: KindServiceReported}
)

// ErrPhaseLocked is returned when an event is not accepted in the current phase.
// It changes nothing and is not shown to the user.
var ErrPhaseLocked = errors.New("operation not available in current phase")

// ErrStaleCompletion is returned when a completion arrives for a request that was reset away
var ErrStaleCompletion = errors.New("completion for a superseded analysis")

// invalidInputType builds the validation error shown for a rejected file
func invalidInputType(mimeType, allowed string) *Error {
	return &Error{
		Kind:    KindInvalidInputType,
		Message: fmt.Sprintf("Please select a valid image file (%s)", allowed),
		Cause:   fmt.Errorf("unsupported type %q", mimeType),
	}
}

func noInputSelected() *Error {
	return &Error{Kind: KindNoInputSelected, Message: "Please select an image first"}
}

// analysisFailed maps a prediction failure onto the user-facing taxonomy
func analysisFailed(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	kind := KindNetwork
	if predict.IsServiceError(err) {
		kind = KindServiceReported
	}
	return &Error{Kind: kind, Message: "Analysis failed", Cause: err}
}

// UserMessage returns the text for the blocking notification
func (e *Error) UserMessage() string {
	var pe *predict.Error
	if errors.As(e.Cause, &pe) {
		return fmt.Sprintf("%s: %s", e.Message, pe.Message)
	}
	if e.Kind == KindInvalidInputType || e.Cause == nil {
		return e.Message
	}
	return e.Error()
}
