package settings

import (
	"context"
	"testing"

	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.CompanySettings), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, s *settings.CompanySettings) error {
	return m.Called(ctx, s).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		repo := new(MockRepository)
		pub := &recordingPublisher{}
		svc := NewService(repo, pub)
		repo.On("Get", ctx, tenantID).Return(settings.Defaults(tenantID, "Acme"), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*settings.CompanySettings")).Return(nil)

		prefix := "fac"
		rate := decimal.RequireFromString("5.5")
		resp, err := svc.Update(ctx, tenantID, UpdateSettingsRequest{InvoicePrefix: &prefix, DefaultVATRate: &rate})

		require.NoError(t, err)
		assert.Equal(t, "FAC", resp.InvoicePrefix)
		assert.Equal(t, "QUO", resp.QuotePrefix)
		assert.Equal(t, "Acme", resp.CompanyName)
		assert.True(t, resp.DefaultVATRate.Equal(rate))
		require.Len(t, pub.events, 1)
		assert.Equal(t, settings.EventTypeSettingsUpdated, pub.events[0].EventType())
		assert.Equal(t, tenantID, pub.events[0].AggregateID())
	})

	t.Run("rejects clashing prefixes without saving", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)
		repo.On("Get", ctx, tenantID).Return(settings.Defaults(tenantID, "Acme"), nil)

		prefix := "INV"
		_, err := svc.Update(ctx, tenantID, UpdateSettingsRequest{QuotePrefix: &prefix})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PREFIX", de.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
