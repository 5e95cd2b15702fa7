package storage

import "errors"

var (
	// ErrNotFound is returned when an id does not resolve for the scoping
	// user. Missing and foreign-owned entities are indistinguishable on
	// purpose so existence never leaks across accounts.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a compare-and-swap update lost against a
	// concurrent writer of the same entity.
	ErrConflict = errors.New("concurrent modification")

	// ErrUnavailable is returned when the backing store (or another
	// dependency) timed out or failed. It is the only retryable kind.
	ErrUnavailable = errors.New("dependency unavailable")
)
