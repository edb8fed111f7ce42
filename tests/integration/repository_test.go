package integration

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequence_ConcurrentCallers(t *testing.T) {
	tdb := NewTestDB(t)
	tenantID := tdb.CreateTenant("Numbering")
	seq := persistence.NewGormNumberSequence(tdb.DB)

	const callers = 20
	var (
		mu      sync.Mutex
		numbers []int
		wg      sync.WaitGroup
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := seq.Next(context.Background(), tenantID, billing.DocumentTypeInvoice, 2026)
			assert.NoError(t, err)
			mu.Lock()
			numbers = append(numbers, n)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(numbers)
	require.Len(t, numbers, callers)
	for i, n := range numbers {
		assert.Equal(t, i+1, n)
	}

	// Each year and document type restarts at one
	n, err := seq.Next(context.Background(), tenantID, billing.DocumentTypeInvoice, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = seq.Next(context.Background(), tenantID, billing.DocumentTypeQuote, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClientRepository_TenantIsolation(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	tenantA := tdb.CreateTenant("Alpha")
	tenantB := tdb.CreateTenant("Beta")
	repo := persistence.NewGormClientRepository(tdb.DB)

	client, err := partner.NewClient(tenantA, "ACME", "Acme Corp", partner.ClientTypeCompany)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	found, err := repo.FindByID(ctx, tenantA, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", found.Name)

	_, err = repo.FindByID(ctx, tenantB, client.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	list, total, err := repo.FindAll(ctx, tenantB, shared.Filter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	// Codes are unique per tenant only
	other, err := partner.NewClient(tenantB, "ACME", "Acme Beta", partner.ClientTypeCompany)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	exists, err := repo.ExistsByCode(ctx, tenantA, "acme")
	require.NoError(t, err)
	assert.True(t, exists)
}
