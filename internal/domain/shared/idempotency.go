package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys of work that has already been claimed
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl.
	// Returns true if the key was newly claimed, false if someone already holds it
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the work can be retried before the TTL lapses
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
