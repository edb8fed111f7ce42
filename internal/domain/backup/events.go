package backup

import "github.com/bizdesk/backend/internal/domain/shared"

const AggregateTypeBackup = "backup"

const (
	EventTypeBackupCompleted = "backup.completed"
	EventTypeBackupFailed    = "backup.failed"
	EventTypeBackupDeleted   = "backup.deleted"
)

type BackupEvent struct {
	shared.BaseDomainEvent
	ObjectKey string `json:"object_key"`
	Status    Status `json:"status"`
	SizeBytes int64  `json:"size_bytes"`
	Error     string `json:"error,omitempty"`
}

func newBackupEvent(eventType string, b *Backup) *BackupEvent {
	return &BackupEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeBackup, b.ID, b.TenantID),
		ObjectKey:       b.ObjectKey,
		Status:          b.Status,
		SizeBytes:       b.SizeBytes,
		Error:           b.Error,
	}
}

func NewBackupDeletedEvent(b *Backup) *BackupEvent {
	return newBackupEvent(EventTypeBackupDeleted, b)
}
