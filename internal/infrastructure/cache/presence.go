package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bizdesk/backend/internal/domain/presence"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	presenceTenantsKey = "presence:tenants"
	// presenceKeyTTL bounds how long an idle tenant's keys survive without pruning
	presenceKeyTTL = 24 * time.Hour
)

// RedisPresenceStore keeps one sorted set (user -> last seen ms) and one
// hash (user -> entry JSON) per tenant.
type RedisPresenceStore struct {
	client *redis.Client
}

func NewRedisPresenceStore(client *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{client: client}
}

func seenKey(tenantID string) string    { return "presence:" + tenantID + ":seen" }
func entriesKey(tenantID string) string { return "presence:" + tenantID + ":entries" }

func (s *RedisPresenceStore) Touch(ctx context.Context, tenantID uuid.UUID, e presence.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode presence entry: %w", err)
	}
	tid, uid := tenantID.String(), e.UserID.String()
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, seenKey(tid), redis.Z{Score: float64(e.LastSeen.UnixMilli()), Member: uid})
		p.HSet(ctx, entriesKey(tid), uid, raw)
		p.Expire(ctx, seenKey(tid), presenceKeyTTL)
		p.Expire(ctx, entriesKey(tid), presenceKeyTTL)
		p.SAdd(ctx, presenceTenantsKey, tid)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store heartbeat: %w", err)
	}
	return nil
}

func (s *RedisPresenceStore) Remove(ctx context.Context, tenantID, userID uuid.UUID) error {
	tid, uid := tenantID.String(), userID.String()
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, seenKey(tid), uid)
		p.HDel(ctx, entriesKey(tid), uid)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove presence: %w", err)
	}
	return nil
}

func (s *RedisPresenceStore) List(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]presence.Entry, error) {
	tid := tenantID.String()
	ids, err := s.client.ZRangeByScore(ctx, seenKey(tid), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	if len(ids) == 0 {
		return []presence.Entry{}, nil
	}
	values, err := s.client.HMGet(ctx, entriesKey(tid), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read presence entries: %w", err)
	}

	entries := make([]presence.Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e presence.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	presence.SortNewestFirst(entries)
	return entries, nil
}

func (s *RedisPresenceStore) Prune(ctx context.Context, before time.Time) (int, error) {
	tenants, err := s.client.SMembers(ctx, presenceTenantsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list presence tenants: %w", err)
	}
	maxScore := "(" + strconv.FormatInt(before.UnixMilli(), 10)

	removed := 0
	for _, tid := range tenants {
		stale, err := s.client.ZRangeByScore(ctx, seenKey(tid), &redis.ZRangeBy{Min: "-inf", Max: maxScore}).Result()
		if err != nil {
			return removed, fmt.Errorf("find stale presence: %w", err)
		}
		if len(stale) > 0 {
			members := make([]any, len(stale))
			for i, id := range stale {
				members[i] = id
			}
			_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.ZRem(ctx, seenKey(tid), members...)
				p.HDel(ctx, entriesKey(tid), stale...)
				return nil
			})
			if err != nil {
				return removed, fmt.Errorf("prune presence: %w", err)
			}
			removed += len(stale)
		}
		if n, err := s.client.ZCard(ctx, seenKey(tid)).Result(); err == nil && n == 0 {
			s.client.SRem(ctx, presenceTenantsKey, tid)
		}
	}
	return removed, nil
}

// MemoryPresenceStore is the single process fallback
type MemoryPresenceStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]map[uuid.UUID]presence.Entry
}

func NewMemoryPresenceStore() *MemoryPresenceStore {
	return &MemoryPresenceStore{tenants: make(map[uuid.UUID]map[uuid.UUID]presence.Entry)}
}

func (s *MemoryPresenceStore) Touch(_ context.Context, tenantID uuid.UUID, e presence.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.tenants[tenantID]
	if !ok {
		users = make(map[uuid.UUID]presence.Entry)
		s.tenants[tenantID] = users
	}
	users[e.UserID] = e
	return nil
}

func (s *MemoryPresenceStore) Remove(_ context.Context, tenantID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenants[tenantID], userID)
	return nil
}

func (s *MemoryPresenceStore) List(_ context.Context, tenantID uuid.UUID, since time.Time) ([]presence.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]presence.Entry, 0, len(s.tenants[tenantID]))
	for _, e := range s.tenants[tenantID] {
		if !e.LastSeen.Before(since) {
			entries = append(entries, e)
		}
	}
	presence.SortNewestFirst(entries)
	return entries, nil
}

func (s *MemoryPresenceStore) Prune(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for tid, users := range s.tenants {
		for uid, e := range users {
			if e.LastSeen.Before(before) {
				delete(users, uid)
				removed++
			}
		}
		if len(users) == 0 {
			delete(s.tenants, tid)
		}
	}
	return removed, nil
}

var (
	_ presence.Store = (*RedisPresenceStore)(nil)
	_ presence.Store = (*MemoryPresenceStore)(nil)
)
