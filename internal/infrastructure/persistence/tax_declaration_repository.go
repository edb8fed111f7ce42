package persistence

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/tax"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxDeclarationRepository implements tax.Repository using GORM
type GormTaxDeclarationRepository struct {
	db *gorm.DB
}

func NewGormTaxDeclarationRepository(db *gorm.DB) *GormTaxDeclarationRepository {
	return &GormTaxDeclarationRepository{db: db}
}

func (r *GormTaxDeclarationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*tax.Declaration, error) {
	var model models.TaxDeclarationModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormTaxDeclarationRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, frequency tax.Frequency, start time.Time) (*tax.Declaration, error) {
	var model models.TaxDeclarationModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Where("frequency = ? AND period_start = ?", frequency, start).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormTaxDeclarationRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]tax.Declaration, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.TaxDeclarationModel{}).Scopes(tenantScope(tenantID))
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "frequency"); ok {
		q = q.Where("frequency = ?", v)
	}
	if year, ok := filterInt(filter, "year"); ok {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("period_start >= ? AND period_start < ?", from, from.AddDate(1, 0, 0))
	}
	rows, total, err := page[models.TaxDeclarationModel](q, filter, declarationSortFields, "period_start")
	if err != nil {
		return nil, 0, err
	}
	declarations := make([]tax.Declaration, len(rows))
	for i := range rows {
		declarations[i] = *rows[i].ToDomain()
	}
	return declarations, total, nil
}

func (r *GormTaxDeclarationRepository) Save(ctx context.Context, d *tax.Declaration) error {
	return saveVersioned(ctx, r.db, models.TaxDeclarationModelFromDomain(d), d)
}

func (r *GormTaxDeclarationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.TaxDeclarationModel{}, tenantID, id)
}
