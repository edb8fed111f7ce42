package storage

import (
	"context"
	"time"
)

// ObjectStore is the subset of object storage the application needs
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a temporary download URL and its expiry. A zero
	// expiry uses the store default.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, time.Time, error)
}

var (
	_ ObjectStore = (*S3ObjectStore)(nil)
	_ ObjectStore = (*MemoryObjectStore)(nil)
)
