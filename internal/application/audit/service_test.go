package audit

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, l *audit.Log) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRepository) Find(ctx context.Context, tenantID uuid.UUID, q audit.Query, filter shared.Filter) ([]audit.Log, int64, error) {
	args := m.Called(ctx, tenantID, q, filter)
	return args.Get(0).([]audit.Log), args.Get(1).(int64), args.Error(2)
}

func TestService_Handle(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	tenantID := uuid.New()
	requester := uuid.New()
	client, err := partner.NewClient(tenantID, "C1", "Acme", partner.ClientTypeCompany)
	require.NoError(t, err)
	event := client.GetDomainEvents()[0]

	ctx := WithSource(context.Background(), audit.Source{UserID: &requester, IPAddress: "10.0.0.1", RequestID: "req-1"})

	var saved *audit.Log
	repo.On("Save", ctx, mock.AnythingOfType("*audit.Log")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*audit.Log) }).
		Return(nil)

	require.NoError(t, svc.Handle(ctx, event))
	require.NotNil(t, saved)
	assert.Equal(t, "created", saved.Action)
	assert.Equal(t, "client", saved.EntityType)
	assert.Equal(t, client.ID, *saved.EntityID)
	assert.Equal(t, &requester, saved.UserID)
	assert.Equal(t, "10.0.0.1", saved.IPAddress)
	assert.Equal(t, "req-1", saved.RequestID)
	assert.Equal(t, "C1", saved.Changes["code"])
	assert.NotContains(t, saved.Changes, "aggregate_id")
}

func TestService_Handle_PrefersEventActor(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	client, err := partner.NewClient(uuid.New(), "C2", "Beta", "")
	require.NoError(t, err)
	event := client.GetDomainEvents()[0].(*partner.PartnerEvent)
	actor := uuid.New()
	event.SetActor(actor)

	other := uuid.New()
	ctx := WithSource(context.Background(), audit.Source{UserID: &other})

	var saved *audit.Log
	repo.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) { saved = args.Get(1).(*audit.Log) }).Return(nil)

	require.NoError(t, svc.Handle(ctx, event))
	assert.Equal(t, actor, *saved.UserID)
}

func TestService_Record(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	tenantID := uuid.New()
	userID := uuid.New()
	ctx := context.Background()

	var saved *audit.Log
	repo.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) { saved = args.Get(1).(*audit.Log) }).Return(nil)

	require.NoError(t, svc.Record(ctx, tenantID, &userID, audit.ActionLoginFailed, "user", &userID, map[string]any{"reason": "bad password"}))
	assert.Equal(t, audit.ActionLoginFailed, saved.Action)
	assert.Equal(t, fixed, saved.OccurredAt)
	assert.Equal(t, "bad password", saved.Changes["reason"])
}

func TestLogFilter_toDomain(t *testing.T) {
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	q, f := LogFilter{Action: "sent", To: &to}.toDomain()

	assert.Equal(t, "sent", q.Action)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *q.To)
	assert.Equal(t, "occurred_at", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, 20, f.PageSize)
}
