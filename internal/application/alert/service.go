// Package alert turns repeated validation failures into alerts.
package alert

import (
	"context"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/alert"
	"github.com/bizdesk/backend/internal/infrastructure/realtime"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notifyTimeout = 30 * time.Second

type Broadcaster interface {
	Broadcast(tenantID uuid.UUID, msg realtime.Message)
}

// Notifier emails an alert to the tenant admins
type Notifier interface {
	ValidationAlert(ctx context.Context, a *alert.Alert) error
}

// AuditRecorder writes audit entries that have no domain event behind them
type AuditRecorder interface {
	Record(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]any) error
}

// ValidationFailureRequest reports a form rejected on the client side
type ValidationFailureRequest struct {
	Form   string   `json:"form" binding:"required,max=100"`
	Fields []string `json:"fields" binding:"max=50,dive,max=100"`
}

type Service struct {
	detector *alert.Detector
	audit    AuditRecorder
	hub      Broadcaster
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	// notify runs the email delivery; tests replace it to run inline
	notify func(func())
}

// NewService creates an alert Service. hub and notifier are optional.
func NewService(detector *alert.Detector, audit AuditRecorder, hub Broadcaster, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		detector: detector,
		audit:    audit,
		hub:      hub,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		notify:   func(fn func()) { go fn() },
	}
}

// RecordFailure counts one failed submission and returns the alert when the
// failure crossed the threshold.
func (s *Service) RecordFailure(ctx context.Context, tenantID, userID uuid.UUID, req ValidationFailureRequest) *alert.Alert {
	a := s.detector.Record(alert.Failure{
		TenantID: tenantID,
		UserID:   userID,
		Form:     strings.TrimSpace(req.Form),
		Fields:   req.Fields,
		At:       s.now(),
	})
	if a == nil {
		return nil
	}

	s.logger.Warn("Repeated validation failures",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("form", a.Form),
		zap.Int("failures", a.Failures),
		zap.Strings("fields", a.Fields))

	if s.audit != nil {
		details := map[string]any{"form": a.Form, "failures": a.Failures, "fields": a.Fields}
		if err := s.audit.Record(ctx, tenantID, &userID, "validation_alert", "user", &userID, details); err != nil {
			s.logger.Error("Failed to audit validation alert", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(tenantID, realtime.AlertMessage(a))
	}
	if s.notifier != nil {
		notifyCtx := context.WithoutCancel(ctx)
		s.notify(func() {
			ctx, cancel := context.WithTimeout(notifyCtx, notifyTimeout)
			defer cancel()
			if err := s.notifier.ValidationAlert(ctx, a); err != nil {
				s.logger.Warn("Validation alert email failed", zap.String("form", a.Form), zap.Error(err))
			}
		})
	}
	return a
}

// Prune forgets idle windows
func (s *Service) Prune() int {
	return s.detector.Prune(s.now())
}
