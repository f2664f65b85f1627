package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("persistence: unique constraint violated")
	// ErrConstraintViolation is returned for other integrity failures such as
	// a missing foreign key target.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
