package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrUnknownField       = errors.New("unknown cascade field")
	ErrUnsupportedMake    = errors.New("unsupported make")
	ErrUnsupportedModel   = errors.New("unsupported model")
	ErrYearOutOfRange     = errors.New("year out of range")
	ErrInvalidLatLng      = errors.New("invalid lat,lng")
	ErrNoSuchOption       = errors.New("no such option")
	ErrLocationUnresolved = errors.New("location not selected from the list")
	ErrBrokenChain        = errors.New("field enabled without a selected parent")
)

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
