package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Store is a small string key-value store used to persist the client session
// between runs. Concrete drivers (memory, file, sqlite, redis) implement it.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
