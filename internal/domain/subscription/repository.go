package subscription

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists subscriptions. Filters: status, client_id, interval.
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Subscription, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Subscription, int64, error)
	// FindDue returns active subscriptions with a next billing date on or before asOf.
	FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Subscription, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Subscription, error)
	Save(ctx context.Context, s *Subscription) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
