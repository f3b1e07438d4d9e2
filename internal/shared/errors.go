package shared

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a single field-level constraint violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness violation. Kept distinct from
// ValidationError so callers can render a targeted duplicate message.
type ConflictError struct {
	Field  string
	Reason string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

// Conflict builds a ConflictError for the given field.
func Conflict(field, reason string) error {
	return ConflictError{Field: field, Reason: reason}
}
