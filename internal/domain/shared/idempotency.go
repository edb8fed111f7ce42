package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been processed.
// MarkProcessed returns true only for the first caller of a key; Release
// hands a key back after the claimed work failed.
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
	Close() error
}
