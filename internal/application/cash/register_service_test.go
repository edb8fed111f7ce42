package cash

import (
	"context"
	"testing"
	"time"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	appbilling "github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRegisterRepository struct {
	mock.Mock
}

func (m *MockRegisterRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cash.Register, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID, uuid.UUID) *cash.Register); ok {
		return fn(ctx, tenantID, id), args.Error(1)
	}
	return args.Get(0).(*cash.Register), args.Error(1)
}

func (m *MockRegisterRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]cash.Register, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cash.Register), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegisterRepository) CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegisterRepository) Save(ctx context.Context, register *cash.Register) error {
	return m.Called(ctx, register).Error(0)
}

func (m *MockRegisterRepository) SaveWithMovement(ctx context.Context, register *cash.Register, movement *cash.Movement) error {
	return m.Called(ctx, register, movement).Error(0)
}

func (m *MockRegisterRepository) SaveWithClosing(ctx context.Context, register *cash.Register, closing *cash.Closing) error {
	return m.Called(ctx, register, closing).Error(0)
}

func (m *MockRegisterRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockRegisterRepository) FindMovements(ctx context.Context, tenantID, registerID uuid.UUID, filter shared.Filter) ([]cash.Movement, int64, error) {
	args := m.Called(ctx, tenantID, registerID, filter)
	return args.Get(0).([]cash.Movement), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegisterRepository) FindClosings(ctx context.Context, tenantID, registerID uuid.UUID, filter shared.Filter) ([]cash.Closing, int64, error) {
	args := m.Called(ctx, tenantID, registerID, filter)
	return args.Get(0).([]cash.Closing), args.Get(1).(int64), args.Error(2)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newRegisterService(repo *MockRegisterRepository, pub *recordingPublisher) *RegisterService {
	svc := NewRegisterService(repo, pub, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func asUser(userID uuid.UUID) context.Context {
	return appaudit.WithSource(context.Background(), audit.Source{UserID: &userID})
}

// openRegister returns a fresh open register each time the repository loads it
func openRegister(t *testing.T, repo *MockRegisterRepository, tenantID uuid.UUID, balance int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	repo.On("FindByID", mock.Anything, tenantID, id).Return(func(context.Context, uuid.UUID, uuid.UUID) *cash.Register {
		r, err := cash.NewRegister(tenantID, "Front desk", "Shop")
		require.NoError(t, err)
		r.ID = id
		require.NoError(t, r.Open(decimal.NewFromInt(balance), uuid.New(), fixedNow))
		r.ClearDomainEvents()
		return r
	}, nil)
	return id
}

func TestRegisterService_Open(t *testing.T) {
	tenantID := uuid.New()

	t.Run("requires an authenticated user", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		svc := newRegisterService(repo, &recordingPublisher{})

		_, err := svc.Open(context.Background(), tenantID, uuid.New(), OpenRegisterRequest{})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("opens with the opening balance", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		pub := &recordingPublisher{}
		svc := newRegisterService(repo, pub)
		r, err := cash.NewRegister(tenantID, "Front desk", "")
		require.NoError(t, err)
		r.ClearDomainEvents()
		userID := uuid.New()
		repo.On("FindByID", mock.Anything, tenantID, r.ID).Return(r, nil)
		repo.On("Save", mock.Anything, r).Return(nil)

		resp, err := svc.Open(asUser(userID), tenantID, r.ID, OpenRegisterRequest{OpeningBalance: decimal.NewFromInt(150)})

		require.NoError(t, err)
		assert.Equal(t, "open", resp.Status)
		assert.True(t, resp.CurrentBalance.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, userID, *resp.OpenedBy)
		require.Len(t, pub.events, 1)
		assert.Equal(t, cash.EventTypeRegisterOpened, pub.events[0].EventType())
	})
}

func TestRegisterService_Record(t *testing.T) {
	tenantID := uuid.New()

	t.Run("withdrawal cannot exceed the drawer", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		svc := newRegisterService(repo, &recordingPublisher{})
		id := openRegister(t, repo, tenantID, 50)

		_, err := svc.Record(context.Background(), tenantID, id, RecordMovementRequest{
			Type: "withdrawal", Amount: decimal.NewFromInt(80), Method: "cash",
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		repo.AssertNotCalled(t, "SaveWithMovement", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("card sale leaves the drawer untouched", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		svc := newRegisterService(repo, &recordingPublisher{})
		id := openRegister(t, repo, tenantID, 50)
		repo.On("SaveWithMovement", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Record(context.Background(), tenantID, id, RecordMovementRequest{
			Type: "sale", Amount: decimal.NewFromInt(30), Method: "card",
		})

		require.NoError(t, err)
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(50)))
	})

	t.Run("retries after a concurrent movement", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		svc := newRegisterService(repo, &recordingPublisher{})
		id := openRegister(t, repo, tenantID, 50)
		repo.On("SaveWithMovement", mock.Anything, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		repo.On("SaveWithMovement", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := svc.Record(context.Background(), tenantID, id, RecordMovementRequest{
			Type: "deposit", Amount: decimal.NewFromInt(20), Method: "cash",
		})

		require.NoError(t, err)
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(70)))
		repo.AssertNumberOfCalls(t, "FindByID", 2)
	})
}

func TestRegisterService_RecordSale(t *testing.T) {
	tenantID := uuid.New()

	t.Run("books a sale linked to the invoice", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		svc := newRegisterService(repo, &recordingPublisher{})
		id := openRegister(t, repo, tenantID, 100)
		invoiceID := uuid.New()
		var booked *cash.Movement
		repo.On("SaveWithMovement", mock.Anything, mock.Anything, mock.AnythingOfType("*cash.Movement")).
			Run(func(args mock.Arguments) { booked = args.Get(2).(*cash.Movement) }).
			Return(nil)

		err := svc.RecordSale(context.Background(), tenantID, id, appbilling.CashSale{
			InvoiceID: invoiceID, Number: "INV-2026-0004", Amount: decimal.RequireFromString("42.50"), Method: "cash",
		})

		require.NoError(t, err)
		require.NotNil(t, booked)
		assert.Equal(t, cash.MovementSale, booked.Type)
		assert.Equal(t, "INV-2026-0004", booked.Reference)
		assert.Equal(t, invoiceID, *booked.InvoiceID)
		assert.True(t, booked.BalanceAfter.Equal(decimal.RequireFromString("142.50")))
	})

	t.Run("closed register", func(t *testing.T) {
		repo := new(MockRegisterRepository)
		svc := newRegisterService(repo, &recordingPublisher{})
		r, err := cash.NewRegister(tenantID, "Back office", "")
		require.NoError(t, err)
		repo.On("FindByID", mock.Anything, tenantID, r.ID).Return(r, nil)

		err = svc.RecordSale(context.Background(), tenantID, r.ID, appbilling.CashSale{
			InvoiceID: uuid.New(), Number: "INV-2026-0005", Amount: decimal.NewFromInt(10), Method: "cash",
		})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestRegisterService_Close(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockRegisterRepository)
	pub := &recordingPublisher{}
	svc := newRegisterService(repo, pub)
	id := openRegister(t, repo, tenantID, 200)
	repo.On("SaveWithClosing", mock.Anything, mock.Anything, mock.AnythingOfType("*cash.Closing")).Return(nil)

	resp, err := svc.Close(asUser(uuid.New()), tenantID, id, CloseRegisterRequest{Counted: decimal.RequireFromString("195.00"), Notes: "coin miscount"})

	require.NoError(t, err)
	assert.True(t, resp.Expected.Equal(decimal.NewFromInt(200)))
	assert.True(t, resp.Difference.Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, fixedNow, resp.ClosedAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, cash.EventTypeRegisterClosed, pub.events[0].EventType())
}

func TestRegisterService_Delete(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockRegisterRepository)
	svc := newRegisterService(repo, &recordingPublisher{})
	id := openRegister(t, repo, tenantID, 0)

	err := svc.Delete(context.Background(), tenantID, id)

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestMovementFilter_toDomain(t *testing.T) {
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	f := MovementFilter{Method: "card", DateTo: &to}.toDomain()

	assert.Equal(t, "card", f.Filters["method"])
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), f.Filters["date_to"])
}
