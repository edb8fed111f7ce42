package partner

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository persists clients. Filters: status, type.
type ClientRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Client, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, int64, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Client, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}

// VendorRepository persists vendors. Filters: status.
type VendorRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Vendor, int64, error)
	Save(ctx context.Context, vendor *Vendor) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
