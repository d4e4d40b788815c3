package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a username or email is already in use.
	ErrConflict = errors.New("username or email already in use")
	// ErrInvalidInput is returned when an update carries no fields.
	ErrInvalidInput = errors.New("at least one field (username or email) is required")
)
