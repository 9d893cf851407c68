package main

import (
	"errors"

	"github.com/matsen/note/internal/storage"
)

// Exit codes
const (
	ExitSuccess            = 0 // Success
	ExitError              = 1 // General error (bad usage, runtime failure)
	ExitConfigError        = 2 // Configuration file missing fields or malformed
	ExitInvalidInput       = 3 // Empty message, non-integer id
	ExitNotFound           = 4 // No note with the requested id
	ExitLockContention     = 5 // Another note process holds the lock; retry
	ExitStorageUnavailable = 6 // Database could not be opened or created
)

// configError marks errors from loading configuration.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

// exitCodeFor maps an error returned by a command to an exit code.
func exitCodeFor(err error) int {
	var cerr configError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cerr):
		return ExitConfigError
	case errors.Is(err, storage.ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, storage.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, storage.ErrLockContention):
		return ExitLockContention
	case errors.Is(err, storage.ErrStorageUnavailable):
		return ExitStorageUnavailable
	default:
		return ExitError
	}
}
