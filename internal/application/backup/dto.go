package backup

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type BackupListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=running completed failed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f BackupListFilter) toDomain() shared.Filter {
	filters := map[string]interface{}{}
	if f.Status != "" {
		filters["status"] = f.Status
	}
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "started_at",
		OrderDir: "desc",
		Filters:  filters,
	}.Normalize()
}

type BackupResponse struct {
	ID          uuid.UUID      `json:"id"`
	Status      string         `json:"status"`
	Trigger     string         `json:"trigger"`
	ObjectKey   string         `json:"object_key"`
	SizeBytes   int64          `json:"size_bytes"`
	TableCounts map[string]int `json:"table_counts"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
	Error       string         `json:"error,omitempty"`
}

func ToBackupResponse(b *backup.Backup) BackupResponse {
	return BackupResponse{
		ID:          b.ID,
		Status:      string(b.Status),
		Trigger:     string(b.Trigger),
		ObjectKey:   b.ObjectKey,
		SizeBytes:   b.SizeBytes,
		TableCounts: b.TableCounts,
		StartedAt:   b.StartedAt,
		CompletedAt: b.CompletedAt,
		DurationMs:  b.Duration().Milliseconds(),
		Error:       b.Error,
	}
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
