package persistence

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const lowStockCondition = "min_quantity > 0 AND quantity <= min_quantity"

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) FindLevel(ctx context.Context, tenantID, productID uuid.UUID) (*inventory.StockLevel, error) {
	var model models.StockLevelModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "product_id = ?", productID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindLevels searches on the product name and SKU
func (r *GormStockRepository) FindLevels(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.StockLevelModel{}).Scopes(tenantScope(tenantID))
	if filter.Search != "" {
		products := search(r.db.Model(&models.ProductModel{}).Select("id").Where("tenant_id = ?", tenantID), filter.Search, "name", "sku")
		q = q.Where("product_id IN (?)", products)
	}
	if low, ok := filterBool(filter, "low_stock"); ok && low {
		q = q.Where(lowStockCondition)
	}
	rows, total, err := page[models.StockLevelModel](q, filter, stockLevelSortFields, "updated_at")
	if err != nil {
		return nil, 0, err
	}
	levels := make([]inventory.StockLevel, len(rows))
	for i := range rows {
		levels[i] = *rows[i].ToDomain()
	}
	return levels, total, nil
}

func (r *GormStockRepository) CountLow(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockLevelModel{}).Scopes(tenantScope(tenantID)).
		Where(lowStockCondition).Count(&count).Error
	return count, err
}

func (r *GormStockRepository) SaveWithMovement(ctx context.Context, level *inventory.StockLevel, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(ctx, tx, models.StockLevelModelFromDomain(level), level); err != nil {
			return err
		}
		return tx.Create(models.StockMovementModelFromDomain(movement)).Error
	})
}

func (r *GormStockRepository) SaveLevel(ctx context.Context, level *inventory.StockLevel) error {
	return saveVersioned(ctx, r.db, models.StockLevelModelFromDomain(level), level)
}

func (r *GormStockRepository) FindMovements(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "reason", "reference_type")
	if v, ok := filterString(filter, "product_id"); ok {
		q = q.Where("product_id = ?", v)
	}
	if v, ok := filterString(filter, "type"); ok {
		q = q.Where("type = ?", v)
	}
	if v, ok := filterString(filter, "reference_id"); ok {
		q = q.Where("reference_id = ?", v)
	}
	q = dateRange(q, filter, "created_at")
	rows, total, err := page[models.StockMovementModel](q, filter, stockMovementSortFields, "created_at")
	if err != nil {
		return nil, 0, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}
