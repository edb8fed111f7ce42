package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// snapshotTables lists the tenant owned tables written to backups. Users are
// left out so password hashes never reach object storage.
var snapshotTables = []struct{ name, order string }{
	{"company_settings", "updated_at"},
	{"clients", "created_at"},
	{"vendors", "created_at"},
	{"products", "created_at"},
	{"stock_levels", "created_at"},
	{"stock_movements", "created_at"},
	{"quotes", "created_at"},
	{"invoices", "created_at"},
	{"invoice_payments", "paid_at"},
	{"payment_reminders", "created_at"},
	{"cash_registers", "created_at"},
	{"cash_movements", "created_at"},
	{"cash_closings", "created_at"},
	{"subscriptions", "created_at"},
	{"markets", "created_at"},
	{"expenses", "created_at"},
	{"tax_declarations", "created_at"},
}

// GormSnapshotExporter implements backup.Exporter
type GormSnapshotExporter struct {
	db *gorm.DB
}

func NewGormSnapshotExporter(db *gorm.DB) *GormSnapshotExporter {
	return &GormSnapshotExporter{db: db}
}

// Export reads every table inside one transaction
func (e *GormSnapshotExporter) Export(ctx context.Context, tenantID uuid.UUID) (*backup.Snapshot, error) {
	snap := &backup.Snapshot{
		Version:  backup.SnapshotVersion,
		TenantID: tenantID,
		TakenAt:  time.Now().UTC(),
		Tables:   make(map[string][]map[string]any, len(snapshotTables)),
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range snapshotTables {
			rows := []map[string]any{}
			if err := tx.Table(t.name).Where("tenant_id = ?", tenantID).Order(t.order).Find(&rows).Error; err != nil {
				return fmt.Errorf("export %s: %w", t.name, err)
			}
			snap.Tables[t.name] = rows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
