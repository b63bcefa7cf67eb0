package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations
var (
	// ErrNotFound indicates the referenced entity does not exist on the server
	ErrNotFound = errors.New("not found")

	// ErrServerOffline indicates the catalog server is unreachable
	ErrServerOffline = errors.New("catalog server is unreachable")

	// ErrAuthFailed indicates the configured API key was rejected
	ErrAuthFailed = errors.New("API key is invalid")
)

// ValidationError reports a required or malformed field caught before a
// request is sent. It is surfaced inline next to the offending field and
// never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PartialActionError reports follow-up steps that failed after the primary
// action succeeded, like mixlist attachments after a create. The primary
// result stands; each failure is reported per item and never rolled back.
type PartialActionError struct {
	Action   string
	Failures []string
}

func (e *PartialActionError) Error() string {
	return fmt.Sprintf("%s: %d follow-up step(s) failed", e.Action, len(e.Failures))
}

// IsPartial reports whether err is (or wraps) a PartialActionError.
func IsPartial(err error) bool {
	var pe *PartialActionError
	return errors.As(err, &pe)
}
