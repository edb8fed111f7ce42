// Package presence records heartbeats and tells each tenant who is online.
package presence

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/presence"
	"github.com/bizdesk/backend/internal/infrastructure/realtime"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broadcaster pushes a message to every connection of a tenant
type Broadcaster interface {
	Broadcast(tenantID uuid.UUID, msg realtime.Message)
}

type HeartbeatRequest struct {
	Page string `json:"page" binding:"max=200"`
}

type Service struct {
	store  presence.Store
	users  identity.UserRepository
	hub    Broadcaster
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a presence Service. A zero ttl uses the default and a
// nil hub disables broadcasting.
func NewService(store presence.Store, users identity.UserRepository, hub Broadcaster, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = presence.DefaultTTL
	}
	return &Service{store: store, users: users, hub: hub, ttl: ttl, logger: logger, now: time.Now}
}

// Heartbeat marks the user online on a page and returns who else is online
func (s *Service) Heartbeat(ctx context.Context, tenantID, userID uuid.UUID, req HeartbeatRequest) ([]presence.Entry, error) {
	name := userID.String()
	if u, err := s.users.FindByID(ctx, tenantID, userID); err == nil {
		name = u.Name()
	}
	entry := presence.Entry{UserID: userID, DisplayName: name, Page: req.Page, LastSeen: s.now().UTC()}
	if err := s.store.Touch(ctx, tenantID, entry); err != nil {
		return nil, err
	}
	return s.publish(ctx, tenantID)
}

// Leave removes the user right away instead of waiting for the TTL
func (s *Service) Leave(ctx context.Context, tenantID, userID uuid.UUID) error {
	if err := s.store.Remove(ctx, tenantID, userID); err != nil {
		return err
	}
	_, err := s.publish(ctx, tenantID)
	return err
}

// Online lists users seen within the TTL, newest first
func (s *Service) Online(ctx context.Context, tenantID uuid.UUID) ([]presence.Entry, error) {
	return s.store.List(ctx, tenantID, s.now().Add(-s.ttl))
}

// Prune drops stale heartbeats of all tenants
func (s *Service) Prune(ctx context.Context) (int, error) {
	removed, err := s.store.Prune(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.Debug("Pruned presence entries", zap.Int("removed", removed))
	}
	return removed, nil
}

func (s *Service) publish(ctx context.Context, tenantID uuid.UUID) ([]presence.Entry, error) {
	online, err := s.Online(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.Broadcast(tenantID, realtime.PresenceMessage(online))
	}
	return online, nil
}
