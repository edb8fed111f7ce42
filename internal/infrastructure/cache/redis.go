// Package cache holds the Redis backed key/value stores and their in-memory
// fallbacks used when Redis is not configured.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/presence"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects and pings. It returns nil, nil when Redis is disabled.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := cfg.Addr()
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Stores groups the key/value stores shared by the services
type Stores struct {
	Client      *redis.Client
	Idempotency shared.IdempotencyStore
	Presence    presence.Store
}

// NewStores uses client when non-nil and in-memory stores otherwise.
// In-memory state is per process, so multi-instance deployments need Redis.
func NewStores(client *redis.Client, log *zap.Logger) *Stores {
	if client == nil {
		log.Warn("Redis not configured, using in-memory idempotency and presence stores")
		return &Stores{
			Idempotency: NewMemoryIdempotencyStore(),
			Presence:    NewMemoryPresenceStore(),
		}
	}
	return &Stores{
		Client:      client,
		Idempotency: NewRedisIdempotencyStore(client, ""),
		Presence:    NewRedisPresenceStore(client),
	}
}

func (s *Stores) Close() error {
	if err := s.Idempotency.Close(); err != nil {
		return err
	}
	if s.Client != nil {
		return s.Client.Close()
	}
	return nil
}
