// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrMissingIdentifier indicates neither an employee ID nor a first name
	// was supplied with a request.
	ErrMissingIdentifier = errors.New("missing employee identifier")

	// ErrEmployeeNotFound indicates no record matched the supplied identifier.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAmbiguousName indicates a first-name lookup matched more than one record.
	ErrAmbiguousName = errors.New("ambiguous name match")

	// ErrFieldNotEditable indicates an update targeted a field outside the
	// mutable whitelist.
	ErrFieldNotEditable = errors.New("field not editable")

	// ErrMutationConflict indicates a concurrent write was detected while
	// committing a record mutation.
	ErrMutationConflict = errors.New("mutation conflict")

	// ErrDeliveryFailed indicates the mail service could not deliver a message.
	ErrDeliveryFailed = errors.New("mail delivery failed")
)

// ValidationError represents a rejected field value. It always names the
// field and the reason so callers can surface a specific message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// AsValidation unwraps err into a *ValidationError if possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// IsNotFound checks if an error is or wraps ErrEmployeeNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}

// IsMissingIdentifier checks if an error is or wraps ErrMissingIdentifier.
func IsMissingIdentifier(err error) bool {
	return errors.Is(err, ErrMissingIdentifier)
}

// IsAmbiguousName checks if an error is or wraps ErrAmbiguousName.
func IsAmbiguousName(err error) bool {
	return errors.Is(err, ErrAmbiguousName)
}

// IsMutationConflict checks if an error is or wraps ErrMutationConflict.
func IsMutationConflict(err error) bool {
	return errors.Is(err, ErrMutationConflict)
}

// IsDeliveryFailed checks if an error is or wraps ErrDeliveryFailed.
func IsDeliveryFailed(err error) bool {
	return errors.Is(err, ErrDeliveryFailed)
}
