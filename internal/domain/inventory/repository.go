package inventory

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRepository persists stock levels and their movements.
// Level filters: low_stock. Movement filters: product_id, type, reference_id.
type StockRepository interface {
	FindLevel(ctx context.Context, tenantID, productID uuid.UUID) (*StockLevel, error)
	FindLevels(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockLevel, int64, error)
	CountLow(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// SaveWithMovement stores the level and appends the movement atomically,
	// failing with a concurrency conflict if the level changed meanwhile.
	SaveWithMovement(ctx context.Context, level *StockLevel, movement *StockMovement) error
	SaveLevel(ctx context.Context, level *StockLevel) error
	FindMovements(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
}
