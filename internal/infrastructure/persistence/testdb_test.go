package persistence

import (
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with every table.
// A single connection keeps the memory database alive across queries.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLine(t *testing.T, qty, price, rate string) billing.Line {
	t.Helper()
	l, err := billing.NewLine(nil, "Consulting", dec(qty), dec(price), dec(rate), decimal.Zero)
	require.NoError(t, err)
	return l
}

func newTestInvoice(t *testing.T, tenantID, clientID uuid.UUID, number string, issue time.Time, lines ...billing.Line) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(tenantID, number, clientID, issue, issue.AddDate(0, 0, 30), "EUR")
	require.NoError(t, err)
	if len(lines) > 0 {
		require.NoError(t, inv.SetLines(lines))
	}
	return inv
}
