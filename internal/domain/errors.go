package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authorization and lookup paths. Handlers map them
// to HTTP status codes; everything else surfaces as a store failure.
var (
	// ErrUnauthenticated means no usable principal: missing or invalid token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the record exists but belongs to another principal.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means no record exists for the given identifier.
	ErrNotFound = errors.New("transaction not found")
)

// ValidationError rejects malformed client input: a non-numeric amount or a
// malformed record identifier.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
