package market

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists markets. Filters: status, client_id.
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Market, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Market, int64, error)
	ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error)
	Save(ctx context.Context, m *Market) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
