// Package presence tracks which users are online and which page they view.
package presence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL               = 60 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
)

// Entry is the last heartbeat of a user
type Entry struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Page        string    `json:"page"`
	LastSeen    time.Time `json:"last_seen"`
}

// Online reports whether the entry is within ttl of now
func (e Entry) Online(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.LastSeen) <= ttl
}

// Store keeps heartbeats per tenant
type Store interface {
	Touch(ctx context.Context, tenantID uuid.UUID, e Entry) error
	Remove(ctx context.Context, tenantID, userID uuid.UUID) error
	// List returns entries seen at or after since
	List(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]Entry, error)
	// Prune drops entries older than before and returns the number removed
	Prune(ctx context.Context, before time.Time) (int, error)
}

// SortNewestFirst orders entries by last seen, most recent first
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
}
