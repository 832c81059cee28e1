package db

import "errors"

var (
	// ErrNotFound is returned when a user or key is not present in the store.
	ErrNotFound = errors.New("not found")
)
