package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested document does not exist,
	// including the first load before any state has been persisted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
