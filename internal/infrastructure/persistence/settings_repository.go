package persistence

import (
	"context"
	"errors"

	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository stores one settings row per tenant
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get falls back to defaults named after the tenant when nothing was saved yet
func (r *GormSettingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	var model models.CompanySettingsModel
	err := r.db.WithContext(ctx).First(&model, "tenant_id = ?", tenantID).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var tenant models.TenantModel
	name := ""
	if err := r.db.WithContext(ctx).Select("name").First(&tenant, "id = ?", tenantID).Error; err == nil {
		name = tenant.Name
	}
	return settings.Defaults(tenantID, name), nil
}

func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.CompanySettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(models.CompanySettingsModelFromDomain(s)).Error
}
