package storage

import "errors"

// Error kinds returned by the note store. Callers match them with
// errors.Is; the returned errors carry additional context.
var (
	// ErrStorageUnavailable means the database file could not be opened
	// or created.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidInput means an operation was given empty or malformed
	// arguments. Nothing was written.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means no note has the requested id.
	ErrNotFound = errors.New("note not found")

	// ErrLockContention means another process held the write lock for
	// longer than the configured timeout. The operation may be retried.
	ErrLockContention = errors.New("store is locked by another process")
)
