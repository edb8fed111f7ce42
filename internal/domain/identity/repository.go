package identity

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*User, error)
	// FindByLogin looks a user up by username or email across tenants.
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]User, int64, error)
	FindByRole(ctx context.Context, tenantID uuid.UUID, role Role) ([]User, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountActiveByRole(ctx context.Context, tenantID uuid.UUID, role Role) (int64, error)
}

// TenantRepository persists tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	FindAllActive(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}
