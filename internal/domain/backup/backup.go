// Package backup tracks tenant data exports written to object storage.
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Trigger says what started a backup
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// Backup is one export run
type Backup struct {
	shared.TenantAggregateRoot
	Status      Status
	Trigger     Trigger
	ObjectKey   string
	SizeBytes   int64
	TableCounts map[string]int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// ObjectKey builds backups/<tenant>/<timestamp>.json.gz
func ObjectKey(tenantID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("backups/%s/%s.json.gz", tenantID, at.UTC().Format("20060102T150405Z"))
}

func Start(tenantID uuid.UUID, trigger Trigger, at time.Time) *Backup {
	b := &Backup{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              StatusRunning,
		Trigger:             trigger,
		ObjectKey:           ObjectKey(tenantID, at),
		TableCounts:         map[string]int{},
		StartedAt:           at,
	}
	return b
}

func (b *Backup) Complete(size int64, counts map[string]int, at time.Time) error {
	if b.Status != StatusRunning {
		return shared.NewInvalidStateError("Backup is not running")
	}
	b.Status = StatusCompleted
	b.SizeBytes = size
	b.TableCounts = counts
	b.CompletedAt = &at
	b.Touch()
	b.AddDomainEvent(newBackupEvent(EventTypeBackupCompleted, b))
	return nil
}

func (b *Backup) Fail(err error, at time.Time) {
	b.Status = StatusFailed
	b.Error = err.Error()
	b.CompletedAt = &at
	b.Touch()
	b.AddDomainEvent(newBackupEvent(EventTypeBackupFailed, b))
}

func (b *Backup) Downloadable() bool {
	return b.Status == StatusCompleted
}

// Duration is zero while running
func (b *Backup) Duration() time.Duration {
	if b.CompletedAt == nil {
		return 0
	}
	return b.CompletedAt.Sub(b.StartedAt)
}

type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Backup, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Backup, int64, error)
	Save(ctx context.Context, b *Backup) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Snapshot is the exported content of one tenant, rows keyed by table name
type Snapshot struct {
	Version  int                         `json:"version"`
	TenantID uuid.UUID                   `json:"tenant_id"`
	TakenAt  time.Time                   `json:"taken_at"`
	Tables   map[string][]map[string]any `json:"tables"`
}

// SnapshotVersion is bumped when the snapshot layout changes
const SnapshotVersion = 1

func (s *Snapshot) Counts() map[string]int {
	counts := make(map[string]int, len(s.Tables))
	for name, rows := range s.Tables {
		counts[name] = len(rows)
	}
	return counts
}

// Exporter reads every tenant owned table
type Exporter interface {
	Export(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error)
}
