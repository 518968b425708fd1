// Package apperr holds the error kinds shared by the record pipeline and
// the broadcast jobs. Callers wrap these with context and test them with
// errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed submission.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing record or member.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks a credential or policy denial.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDelivery marks a notification sink that was unreachable or rejected the card.
	ErrDelivery = errors.New("notification delivery failed")

	// ErrReconciliationIncomplete is raised on purpose when not every roster
	// member has reported yet. It drives the attendance retry loop.
	ErrReconciliationIncomplete = errors.New("not all members have reported")

	// ErrConflict marks a write that lost a race on a uniqueness constraint.
	ErrConflict = errors.New("conflicting write")

	// ErrServer marks a persistence failure surfaced to the API layer.
	ErrServer = errors.New("internal server error")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid is shorthand for a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DeliveryError carries the sink's response for logging.
type DeliveryError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deliver card to %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("deliver card to %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDelivery, e.Err}
	}
	return []error{ErrDelivery}
}

// IsClientError reports whether err is caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether the same operation may succeed if repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDelivery) ||
		errors.Is(err, ErrReconciliationIncomplete)
}
