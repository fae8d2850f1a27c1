package repository

import (
	"context"
	"time"
)

// CacheRepository is a byte-oriented key/value cache with TTLs.
type CacheRepository interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}
