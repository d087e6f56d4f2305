package snapshot

import "errors"

var (
	// ErrNotFound is returned when no snapshot exists at the configured
	// location. Not an error condition for cold-start logic.
	ErrNotFound = errors.New("snapshot not found")

	// ErrParse is returned when snapshot content cannot be decoded
	ErrParse = errors.New("snapshot parse error")
)
