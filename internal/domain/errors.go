package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrInvalidChallengeStatus is returned for a status outside pending/resolved/rejected.
	ErrInvalidChallengeStatus = errors.New("invalid challenge status")

	// ErrInvalidDocumentRef is returned when a challenge does not reference
	// exactly one receipt or invoice.
	ErrInvalidDocumentRef = errors.New("exactly one of receipt_id or invoice_id is required")
)

// ValidationError reports which field failed validation and why.
// It always matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError. err may be nil.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as a match so callers can treat every
// ValidationError uniformly.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SafeMessage returns a message suitable for API clients.
func (e *ValidationError) SafeMessage() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// requireNonEmpty returns a ValidationError naming field when value is blank.
func requireNonEmpty(field, value string) error {
	if isBlank(value) {
		return NewValidationError(field, "is required", nil)
	}
	return nil
}
