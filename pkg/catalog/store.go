package catalog

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Store implementations when no document exists
// under the requested key.
var ErrNotFound = errors.New("entry not found")

// Getter is the read-only slice of a Store that key resolution needs.
type Getter interface {
	// GetEntry returns the entry stored under key, or ErrNotFound.
	GetEntry(ctx context.Context, key string) (*Entry, error)
}

// Store is a key/value document store holding catalog entries.
// Implementations make no ordering or transactional promises across keys.
type Store interface {
	Getter

	// SetEntry writes (or fully replaces) an entry under e.Key.
	SetEntry(ctx context.Context, e *Entry) error

	// DeleteEntry removes the entry under key. Deleting a missing key is not an error.
	DeleteEntry(ctx context.Context, key string) error

	// ListKeys returns all entry keys matching a glob pattern ("*" for all), sorted.
	ListKeys(ctx context.Context, pattern string) ([]string, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// IsNotFound returns true if err means "no such document".
// Recognises both ErrNotFound and a bare redis.Nil.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, redis.Nil)
}
