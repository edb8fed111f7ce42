package persistence

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/subscription"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements subscription.Repository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormSubscriptionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]subscription.Subscription, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "name")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "client_id"); ok {
		q = q.Where("client_id = ?", v)
	}
	if v, ok := filterString(filter, "interval"); ok {
		q = q.Where("billing_interval = ?", v)
	}
	rows, total, err := page[models.SubscriptionModel](q, filter, subscriptionSortFields, "next_billing_date")
	if err != nil {
		return nil, 0, err
	}
	return subscriptionsToDomain(rows), total, nil
}

func (r *GormSubscriptionRepository) FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Where("status = ? AND next_billing_date <= ?", subscription.StatusActive, asOf).
		Order("next_billing_date").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return subscriptionsToDomain(rows), nil
}

func (r *GormSubscriptionRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Where("status = ?", subscription.StatusActive).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return subscriptionsToDomain(rows), nil
}

func (r *GormSubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	return saveVersioned(ctx, r.db, models.SubscriptionModelFromDomain(s), s)
}

func (r *GormSubscriptionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.SubscriptionModel{}, tenantID, id)
}

func subscriptionsToDomain(rows []models.SubscriptionModel) []subscription.Subscription {
	subs := make([]subscription.Subscription, len(rows))
	for i := range rows {
		subs[i] = *rows[i].ToDomain()
	}
	return subs
}
