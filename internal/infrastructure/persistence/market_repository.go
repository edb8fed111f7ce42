package persistence

import (
	"context"
	"strings"

	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMarketRepository implements market.Repository using GORM
type GormMarketRepository struct {
	db *gorm.DB
}

func NewGormMarketRepository(db *gorm.DB) *GormMarketRepository {
	return &GormMarketRepository{db: db}
}

func (r *GormMarketRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*market.Market, error) {
	var model models.MarketModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormMarketRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]market.Market, int64, error) {
	q := conn(ctx, r.db).Model(&models.MarketModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "reference", "title", "description")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "client_id"); ok {
		q = q.Where("client_id = ?", v)
	}
	rows, total, err := page[models.MarketModel](q, filter, marketSortFields, "start_date")
	if err != nil {
		return nil, 0, err
	}
	markets := make([]market.Market, len(rows))
	for i := range rows {
		markets[i] = *rows[i].ToDomain()
	}
	return markets, total, nil
}

func (r *GormMarketRepository) ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error) {
	return exists(ctx, conn(ctx, r.db), &models.MarketModel{}, "tenant_id = ? AND reference = ?", tenantID, strings.ToUpper(strings.TrimSpace(reference)))
}

func (r *GormMarketRepository) Save(ctx context.Context, m *market.Market) error {
	return saveVersioned(ctx, conn(ctx, r.db), models.MarketModelFromDomain(m), m)
}

func (r *GormMarketRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.MarketModel{}, tenantID, id)
}
