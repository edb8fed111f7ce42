package cash

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RegisterRepository persists registers, movements and closings.
// Register filters: status. Movement filters: type, method, invoice_id.
type RegisterRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Register, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Register, int64, error)
	CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, register *Register) error
	// SaveWithMovement stores the register and the movement in one transaction.
	SaveWithMovement(ctx context.Context, register *Register, movement *Movement) error
	// SaveWithClosing stores the register and the closing in one transaction.
	SaveWithClosing(ctx context.Context, register *Register, closing *Closing) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindMovements(ctx context.Context, tenantID, registerID uuid.UUID, filter shared.Filter) ([]Movement, int64, error)
	FindClosings(ctx context.Context, tenantID, registerID uuid.UUID, filter shared.Filter) ([]Closing, int64, error)
}
