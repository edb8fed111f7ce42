package persistence

import (
	"context"
	"strings"

	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		First(&model, "sku = ?", strings.ToUpper(strings.TrimSpace(sku))).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "name", "sku", "description")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "category"); ok {
		q = q.Where("category = ?", v)
	}
	if v, ok := filterString(filter, "vendor_id"); ok {
		q = q.Where("vendor_id = ?", v)
	}
	if v, ok := filterBool(filter, "track_stock"); ok {
		q = q.Where("track_stock = ?", v)
	}
	rows, total, err := page[models.ProductModel](q, filter, productSortFields, "name")
	if err != nil {
		return nil, 0, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return saveVersioned(ctx, r.db, models.ProductModelFromDomain(product), product)
}

func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.ProductModel{}, tenantID, id)
}

func (r *GormProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	return exists(ctx, r.db, &models.ProductModel{}, "tenant_id = ? AND sku = ?", tenantID, strings.ToUpper(strings.TrimSpace(sku)))
}
