package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks an authenticated caller acting on a row owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a lookup that matched no row.
	ErrNotFound = errors.New("not found")
)

// Invalid returns an ErrValidation wrapping the given reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// DecodeError reports a storage column whose value could not be coerced.
type DecodeError struct {
	Column string
	Value  any
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode column %q (%T): %s", e.Column, e.Value, e.Reason)
}
