package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the core wraps exactly one of them,
// so callers can tell "not allowed" from "bad input" from "server side".
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failure")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage failure")
	ErrConsistency  = errors.New("consistency failure")
)

// Error is a categorized error with a message safe to show to clients.
type Error struct {
	Category error
	Message  string
}

// NewError creates an error in the given category.
func NewError(category error, message string) *Error {
	return &Error{Category: category, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the category.
func (e *Error) Unwrap() error {
	return e.Category
}

// Shared validation errors.
var (
	ErrInvalidStatus = NewError(ErrValidation, "status must be one of OPERATIONAL, DEGRADED, OUTAGE, MAINTENANCE")
	ErrInvalidRole   = NewError(ErrValidation, "unknown role")
)

// StorageFailure marks err as a storage failure unless it already carries a category.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, category := range []error{ErrUnauthorized, ErrValidation, ErrNotFound, ErrStorage, ErrConsistency} {
		if errors.Is(err, category) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
