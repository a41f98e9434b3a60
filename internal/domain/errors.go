package domain

import "errors"

var (
	// ErrNotFound is returned when an entity cannot be located.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller does not own the entity.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
