package tax

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists declarations. Filters: status, frequency, year.
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Declaration, error)
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, frequency Frequency, start time.Time) (*Declaration, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Declaration, int64, error)
	Save(ctx context.Context, d *Declaration) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
