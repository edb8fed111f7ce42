package persistence

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// versioned is implemented by every aggregate through BaseAggregateRoot
type versioned interface {
	GetID() uuid.UUID
	PersistedVersion() int
	MarkPersisted()
}

// saveVersioned inserts a new aggregate or updates a stored one, provided
// the stored version is still the one it was loaded with. Associations are
// left to the caller.
func saveVersioned(ctx context.Context, db *gorm.DB, model any, agg versioned) error {
	db = db.WithContext(ctx)
	if agg.PersistedVersion() == 0 {
		if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		agg.MarkPersisted()
		return nil
	}
	res := db.Model(model).
		Where("version = ?", agg.PersistedVersion()).
		Select("*").
		Omit("created_at", clause.Associations).
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	agg.MarkPersisted()
	return nil
}

// deleteScoped removes one tenant row and reports missing rows as not found
func deleteScoped(ctx context.Context, db *gorm.DB, model any, tenantID, id uuid.UUID) error {
	res := db.WithContext(ctx).Scopes(tenantScope(tenantID)).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// exists reports whether any row matches the conditions
func exists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
