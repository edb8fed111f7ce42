package persistence

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/purchase"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements purchase.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

func (r *GormExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchase.Expense, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "description", "category", "reference")
	if v, ok := filterString(filter, "vendor_id"); ok {
		q = q.Where("vendor_id = ?", v)
	}
	if v, ok := filterString(filter, "category"); ok {
		q = q.Where("category = ?", v)
	}
	q = dateRange(q, filter, "expense_date")
	rows, total, err := page[models.ExpenseModel](q, filter, expenseSortFields, "expense_date")
	if err != nil {
		return nil, 0, err
	}
	return expensesToDomain(rows), total, nil
}

// FindBetween returns expenses dated in [from, to]
func (r *GormExpenseRepository) FindBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]purchase.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Where("expense_date >= ? AND expense_date <= ?", from, to).
		Order("expense_date").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(rows), nil
}

func (r *GormExpenseRepository) Save(ctx context.Context, e *purchase.Expense) error {
	return saveVersioned(ctx, r.db, models.ExpenseModelFromDomain(e), e)
}

func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.ExpenseModel{}, tenantID, id)
}

func expensesToDomain(rows []models.ExpenseModel) []purchase.Expense {
	expenses := make([]purchase.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses
}
