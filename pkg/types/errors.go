package types

import (
	"errors"
	"fmt"
)

// ErrInvalidValue is the sentinel wrapped by every ValidationError.
var ErrInvalidValue = errors.New("invalid value")

// ValidationError is returned when a rich type is constructed from bad input.
type ValidationError struct {
	Type   string
	Field  string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %s: %s (got %T %v)", e.Type, e.Field, e.Reason, e.Value, e.Value)
	}

	return fmt.Sprintf("invalid %s: %s (got %T %v)", e.Type, e.Reason, e.Value, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidValue.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}

func invalid(typeName, field string, value any, reason string) *ValidationError {
	return &ValidationError{
		Type:   typeName,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}
