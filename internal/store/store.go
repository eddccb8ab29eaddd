// Package store defines the key-value persistence used by visitor tracking
// and its backends: Redis, Postgres, in-process memory and a null store for
// deployments without persistence.
package store

import (
	"context"
)

// Store is a string key-value store
type Store interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Put writes value under key, replacing any previous value
	Put(ctx context.Context, key, value string) error

	// List returns every key starting with prefix in lexicographic order
	List(ctx context.Context, prefix string) ([]string, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend's connections
	Close() error
}

// Incrementer is implemented by stores with an atomic counter primitive.
// Incr treats a missing key as 0 and stores the result as a decimal string.
type Incrementer interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// Backend names a store implementation
type Backend string

const (
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
	BackendNone     Backend = "none"
)
