package persistence

import (
	"context"
	"strings"

	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormClientRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		First(&model, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormClientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Client, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "name", "code", "email", "city")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "type"); ok {
		q = q.Where("type = ?", v)
	}
	rows, total, err := page[models.ClientModel](q, filter, clientSortFields, "name")
	if err != nil {
		return nil, 0, err
	}
	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

func (r *GormClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Client, error) {
	if len(ids) == 0 {
		return []partner.Client{}, nil
	}
	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	return saveVersioned(ctx, r.db, models.ClientModelFromDomain(client), client)
}

func (r *GormClientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.ClientModel{}, tenantID, id)
}

func (r *GormClientRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(ctx, r.db, &models.ClientModel{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code)))
}

// GormVendorRepository implements partner.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

func (r *GormVendorRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormVendorRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Vendor, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.VendorModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "name", "code", "email", "contact_name")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	rows, total, err := page[models.VendorModel](q, filter, vendorSortFields, "name")
	if err != nil {
		return nil, 0, err
	}
	vendors := make([]partner.Vendor, len(rows))
	for i := range rows {
		vendors[i] = *rows[i].ToDomain()
	}
	return vendors, total, nil
}

func (r *GormVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	return saveVersioned(ctx, r.db, models.VendorModelFromDomain(vendor), vendor)
}

func (r *GormVendorRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.VendorModel{}, tenantID, id)
}

func (r *GormVendorRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(ctx, r.db, &models.VendorModel{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code)))
}
