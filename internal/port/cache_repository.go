package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// Get loads the value stored under key into dest, returns false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes the entry for key, a no-op when absent.
	Delete(ctx context.Context, key string) error
}
