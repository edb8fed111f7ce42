package persistence

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository is append-only
type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Save(ctx context.Context, l *audit.Log) error {
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(l)).Error
}

func (r *GormAuditLogRepository) Find(ctx context.Context, tenantID uuid.UUID, query audit.Query, filter shared.Filter) ([]audit.Log, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLogModel{}).Scopes(tenantScope(tenantID))
	if query.EntityType != "" {
		q = q.Where("entity_type = ?", query.EntityType)
	}
	if query.EntityID != nil {
		q = q.Where("entity_id = ?", *query.EntityID)
	}
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.Action != "" {
		q = q.Where("action = ?", query.Action)
	}
	if query.From != nil {
		q = q.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("occurred_at <= ?", *query.To)
	}
	rows, total, err := page[models.AuditLogModel](q, filter, auditSortFields, "occurred_at")
	if err != nil {
		return nil, 0, err
	}
	logs := make([]audit.Log, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, total, nil
}
