package persistence

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBackupRepository implements backup.Repository using GORM
type GormBackupRepository struct {
	db *gorm.DB
}

func NewGormBackupRepository(db *gorm.DB) *GormBackupRepository {
	return &GormBackupRepository{db: db}
}

func (r *GormBackupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*backup.Backup, error) {
	var model models.BackupModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormBackupRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]backup.Backup, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.BackupModel{}).Scopes(tenantScope(tenantID))
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	rows, total, err := page[models.BackupModel](q, filter, backupSortFields, "started_at")
	if err != nil {
		return nil, 0, err
	}
	backups := make([]backup.Backup, len(rows))
	for i := range rows {
		backups[i] = *rows[i].ToDomain()
	}
	return backups, total, nil
}

func (r *GormBackupRepository) Save(ctx context.Context, b *backup.Backup) error {
	return saveVersioned(ctx, r.db, models.BackupModelFromDomain(b), b)
}

func (r *GormBackupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.BackupModel{}, tenantID, id)
}
