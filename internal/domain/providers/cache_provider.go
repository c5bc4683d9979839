package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}

// RateCounter counts hits per key in fixed windows shared across instances
type RateCounter interface {
	// IncrWindow adds one hit to key, starting a window of the given length on
	// the first hit, and returns the hits so far and the time left in the window
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
