package purchase

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseRepository persists expenses. Filters: vendor_id, category, date_from, date_to.
type ExpenseRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, int64, error)
	FindBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Expense, error)
	Save(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
