package application

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrRefundNotAllowed  = errors.New("order not eligible for refund")
)

// ValidationError reports malformed or missing input; no state is mutated
// when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
