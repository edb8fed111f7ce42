package metrics

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/shared"
)

// EventCounter counts domain events that have no synchronous call site
// to instrument
type EventCounter struct {
	m *Metrics
}

func (m *Metrics) Events() *EventCounter {
	return &EventCounter{m: m}
}

func (h *EventCounter) EventTypes() []string {
	return []string{backup.EventTypeBackupCompleted, backup.EventTypeBackupFailed}
}

func (h *EventCounter) Handle(_ context.Context, ev shared.DomainEvent) error {
	switch ev.EventType() {
	case backup.EventTypeBackupCompleted:
		h.m.BackupFinished("completed")
	case backup.EventTypeBackupFailed:
		h.m.BackupFinished("failed")
	}
	return nil
}

var _ shared.EventHandler = (*EventCounter)(nil)
