package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	tenants := NewGormTenantRepository(db)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	tenant, err := identity.NewTenant("Acme Studio")
	require.NoError(t, err)
	require.NoError(t, tenants.Save(ctx, tenant))

	bySlug, err := tenants.FindBySlug(ctx, "acme-studio")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, bySlug.ID)

	admin, err := identity.NewUser(tenant.ID, "alice", "alice@acme.test", "s3cret-pass", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, admin))

	t.Run("login by username or email", func(t *testing.T) {
		u, err := repo.FindByLogin(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, u.ID)

		u, err = repo.FindByLogin(ctx, "alice@acme.test")
		require.NoError(t, err)
		assert.True(t, u.VerifyPassword("s3cret-pass"))
	})

	t.Run("same login in two companies is ambiguous", func(t *testing.T) {
		other, err := identity.NewTenant("Other Co")
		require.NoError(t, err)
		require.NoError(t, tenants.Save(ctx, other))
		twin, err := identity.NewUser(other.ID, "alice", "alice@other.test", "s3cret-pass", identity.RoleViewer)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, twin))

		_, err = repo.FindByLogin(ctx, "alice")
		assert.ErrorIs(t, err, ErrAmbiguousLogin)

		u, err := repo.FindByUsername(ctx, other.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, twin.ID, u.ID)
	})

	t.Run("counts", func(t *testing.T) {
		n, err := repo.CountActiveByRole(ctx, tenant.ID, identity.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.CountByTenant(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		ok, err := repo.ExistsByUsername(ctx, tenant.ID, "Alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	active, err := tenants.FindAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestGormSettingsRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	tenant, err := identity.NewTenant("Blue Bakery")
	require.NoError(t, err)
	require.NoError(t, NewGormTenantRepository(db).Save(ctx, tenant))

	s, err := repo.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Bakery", s.CompanyName)
	assert.Equal(t, "INV", s.InvoicePrefix)

	s.InvoicePrefix = "FAC"
	require.NoError(t, repo.Save(ctx, s))
	s.FooterNote = "Thanks"
	require.NoError(t, repo.Save(ctx, s))

	saved, err := repo.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC", saved.InvoicePrefix)
	assert.Equal(t, "Thanks", saved.FooterNote)

	var _ settings.Repository = repo
}

func TestGormTaxDeclarationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaxDeclarationRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	period, err := tax.NewPeriod(tax.FrequencyQuarterly, 2026, 1)
	require.NoError(t, err)
	sales := []tax.TaxableItem{{Rate: dec("20"), Base: dec("1000"), VAT: dec("200")}}
	d := tax.Compute(tenantID, period, sales, 1, nil, day(2026, 4, 2))
	require.NoError(t, repo.Save(ctx, d))

	found, err := repo.FindByPeriod(ctx, tenantID, tax.FrequencyQuarterly, period.Start)
	require.NoError(t, err)
	assert.Equal(t, d.ID, found.ID)
	assert.True(t, dec("200").Equal(found.NetVATDue))
	require.Len(t, found.Breakdown, 1)
	assert.Equal(t, "2026-Q1", found.Period.Label())

	_, err = repo.FindByPeriod(ctx, tenantID, tax.FrequencyMonthly, period.Start)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, total, err := repo.FindAll(ctx, tenantID, shared.Filter{}.With("year", 2026))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.FindAll(ctx, tenantID, shared.Filter{}.With("year", "2025"))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormAuditLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()
	tenantID, userID, entityID := uuid.New(), uuid.New(), uuid.New()
	src := audit.Source{UserID: &userID, IPAddress: "10.0.0.1"}

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []string{"invoice.created", "invoice.sent", audit.ActionLoginSucceeded} {
		var id *uuid.UUID
		entity := "user"
		if i < 2 {
			id, entity = &entityID, "invoice"
		}
		l, err := audit.NewLog(tenantID, action, entity, id, map[string]any{"n": i}, src, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, l))
	}

	logs, total, err := repo.Find(ctx, tenantID, audit.Query{EntityType: "invoice", EntityID: &entityID}, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "invoice.sent", logs[0].Action)
	assert.EqualValues(t, 1, logs[0].Changes["n"])

	from := base.Add(90 * time.Minute)
	_, total, err = repo.Find(ctx, tenantID, audit.Query{From: &from}, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestGormBackupRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBackupRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	b := backup.Start(tenantID, backup.TriggerManual, day(2026, 5, 1))
	require.NoError(t, repo.Save(ctx, b))
	require.NoError(t, b.Complete(2048, map[string]int{"clients": 3}, day(2026, 5, 1).Add(time.Second)))
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByID(ctx, tenantID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, backup.StatusCompleted, found.Status)
	assert.Equal(t, 3, found.TableCounts["clients"])
	assert.Equal(t, time.Second, found.Duration())
}

func TestGormReportReader(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	reader := NewGormReportReader(db)
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	client, err := partner.NewClient(tenantID, "R1", "Reader client", "")
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	paid := newTestInvoice(t, tenantID, clientID, "INV-2026-0001", day(2026, 1, 10), testLine(t, "1", "100", "20"))
	require.NoError(t, paid.Send(day(2026, 1, 10)))
	_, err = paid.RecordPayment(dec("50"), billing.PaymentMethodCash, "", nil, day(2026, 2, 3))
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, paid))

	open := newTestInvoice(t, tenantID, clientID, "INV-2026-0002", day(2026, 2, 20), testLine(t, "2", "100", "20"))
	require.NoError(t, open.Send(day(2026, 2, 20)))
	require.NoError(t, invoices.Save(ctx, open))

	draft := newTestInvoice(t, tenantID, clientID, "INV-2026-0003", day(2026, 2, 21), testLine(t, "1", "999", "20"))
	require.NoError(t, invoices.Save(ctx, draft))

	now := day(2026, 3, 1)

	sum, err := reader.PaymentsBetween(ctx, tenantID, day(2026, 2, 1), day(2026, 3, 1))
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(sum), sum.String())

	rec, err := reader.Receivables(ctx, tenantID, now)
	require.NoError(t, err)
	assert.True(t, dec("310").Equal(rec.Outstanding), rec.Outstanding.String())
	assert.Equal(t, int64(1), rec.OverdueCount)
	assert.True(t, dec("70").Equal(rec.OverdueAmount), rec.OverdueAmount.String())

	drafts, err := reader.CountDraftInvoices(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), drafts)

	clients, err := reader.CountActiveClients(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), clients)

	months, err := reader.RevenueByMonth(ctx, tenantID, day(2026, 1, 1), day(2026, 3, 1))
	require.NoError(t, err)
	assert.True(t, dec("120").Equal(months["2026-01"]))
	assert.True(t, dec("240").Equal(months["2026-02"]))

	count, amount, err := reader.OpenQuotes(ctx, tenantID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.True(t, amount.IsZero())
}

func TestGormSnapshotExporter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	c, err := partner.NewClient(tenantID, "SNAP", "Snapshot client", "")
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(ctx, c))
	other, err := partner.NewClient(uuid.New(), "OTHER", "Other tenant", "")
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(ctx, other))

	inv := newTestInvoice(t, tenantID, c.ID, "INV-2026-0001", day(2026, 1, 1), testLine(t, "1", "10", "20"))
	require.NoError(t, inv.Send(day(2026, 1, 1)))
	_, err = inv.RecordPayment(dec("12"), billing.PaymentMethodCard, "", nil, day(2026, 1, 2))
	require.NoError(t, err)
	require.NoError(t, NewGormInvoiceRepository(db).Save(ctx, inv))

	snap, err := NewGormSnapshotExporter(db).Export(ctx, tenantID)
	require.NoError(t, err)
	counts := snap.Counts()
	assert.Equal(t, 1, counts["clients"])
	assert.Equal(t, 1, counts["invoices"])
	assert.Equal(t, 1, counts["invoice_payments"])
	assert.Equal(t, 0, counts["expenses"])
	assert.Len(t, counts, len(snapshotTables))
}
