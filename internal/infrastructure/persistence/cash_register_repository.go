package persistence

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashRegisterRepository implements cash.RegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

func (r *GormCashRegisterRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cash.Register, error) {
	var model models.CashRegisterModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormCashRegisterRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]cash.Register, int64, error) {
	q := conn(ctx, r.db).Model(&models.CashRegisterModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "name", "location")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	rows, total, err := page[models.CashRegisterModel](q, filter, registerSortFields, "name")
	if err != nil {
		return nil, 0, err
	}
	registers := make([]cash.Register, len(rows))
	for i := range rows {
		registers[i] = *rows[i].ToDomain()
	}
	return registers, total, nil
}

func (r *GormCashRegisterRepository) CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.CashRegisterModel{}).Scopes(tenantScope(tenantID)).
		Where("status = ?", cash.RegisterStatusOpen).Count(&count).Error
	return count, err
}

func (r *GormCashRegisterRepository) Save(ctx context.Context, register *cash.Register) error {
	return saveVersioned(ctx, conn(ctx, r.db), models.CashRegisterModelFromDomain(register), register)
}

func (r *GormCashRegisterRepository) SaveWithMovement(ctx context.Context, register *cash.Register, movement *cash.Movement) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(ctx, tx, models.CashRegisterModelFromDomain(register), register); err != nil {
			return err
		}
		return tx.Create(models.CashMovementModelFromDomain(movement)).Error
	})
}

func (r *GormCashRegisterRepository) SaveWithClosing(ctx context.Context, register *cash.Register, closing *cash.Closing) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(ctx, tx, models.CashRegisterModelFromDomain(register), register); err != nil {
			return err
		}
		return tx.Create(models.CashClosingModelFromDomain(closing)).Error
	})
}

// Delete removes the register with its movements and closings
func (r *GormCashRegisterRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND register_id = ?", tenantID, id).Delete(&models.CashMovementModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND register_id = ?", tenantID, id).Delete(&models.CashClosingModel{}).Error; err != nil {
			return err
		}
		return deleteScoped(ctx, tx, &models.CashRegisterModel{}, tenantID, id)
	})
}

func (r *GormCashRegisterRepository) FindMovements(ctx context.Context, tenantID, registerID uuid.UUID, filter shared.Filter) ([]cash.Movement, int64, error) {
	q := conn(ctx, r.db).Model(&models.CashMovementModel{}).Scopes(tenantScope(tenantID)).
		Where("register_id = ?", registerID)
	q = search(q, filter.Search, "reference")
	for _, key := range []string{"type", "method", "invoice_id"} {
		if v, ok := filterString(filter, key); ok {
			q = q.Where(key+" = ?", v)
		}
	}
	q = dateRange(q, filter, "created_at")
	rows, total, err := page[models.CashMovementModel](q, filter, cashMoveSortFields, "created_at")
	if err != nil {
		return nil, 0, err
	}
	movements := make([]cash.Movement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

func (r *GormCashRegisterRepository) FindClosings(ctx context.Context, tenantID, registerID uuid.UUID, filter shared.Filter) ([]cash.Closing, int64, error) {
	q := conn(ctx, r.db).Model(&models.CashClosingModel{}).Scopes(tenantScope(tenantID)).
		Where("register_id = ?", registerID)
	q = dateRange(q, filter, "closed_at")
	rows, total, err := page[models.CashClosingModel](q, filter, closingSortFields, "closed_at")
	if err != nil {
		return nil, 0, err
	}
	closings := make([]cash.Closing, len(rows))
	for i := range rows {
		closings[i] = *rows[i].ToDomain()
	}
	return closings, total, nil
}
