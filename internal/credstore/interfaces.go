package credstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no credential state has been stored yet.
// Callers treat it as "not logged in" rather than a failure.
var ErrNotFound = errors.New("credstore: no stored credentials")

// Store reads and writes serialized credential state to persistent storage.
//
// Session authentication requires writable storage.
type Store interface {
	// Read returns the stored credential state. Returns ErrNotFound if nothing
	// has been stored, or another error if the backend is unreadable.
	Read(ctx context.Context) (string, error)

	// Write persists the credential state to storage. Returns error if the
	// storage backend is read-only (e.g., environment variables) or if the
	// write operation fails.
	Write(ctx context.Context, state string) error

	// Delete removes any stored credential state. Deleting a store that holds
	// nothing is not an error. Returns error for read-only backends.
	Delete(ctx context.Context) error
}
