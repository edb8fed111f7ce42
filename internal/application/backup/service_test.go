package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/cache"
	"github.com/bizdesk/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*backup.Backup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backup.Backup), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]backup.Backup, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]backup.Backup), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Save(ctx context.Context, b *backup.Backup) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type stubExporter struct {
	snapshot *backup.Snapshot
	err      error
	calls    int
	during   func()
}

func (e *stubExporter) Export(_ context.Context, tenantID uuid.UUID) (*backup.Snapshot, error) {
	e.calls++
	if e.during != nil {
		e.during()
	}
	if e.err != nil {
		return nil, e.err
	}
	e.snapshot.TenantID = tenantID
	return e.snapshot, nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

var fixedNow = time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC)

type fixture struct {
	tenantID uuid.UUID
	repo     *MockRepository
	exporter *stubExporter
	store    *storage.MemoryObjectStore
	pub      *recordingPublisher
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		tenantID: uuid.New(),
		repo:     new(MockRepository),
		exporter: &stubExporter{snapshot: &backup.Snapshot{
			Version: backup.SnapshotVersion,
			Tables: map[string][]map[string]any{
				"clients":  {{"name": "Maison Blanc"}, {"name": "Studio Lune"}},
				"invoices": {{"number": "INV-2026-0001"}},
			},
		}},
		store: storage.NewMemoryObjectStore(),
		pub:   &recordingPublisher{},
	}
	f.svc = NewService(f.repo, f.exporter, f.store, cache.NewMemoryIdempotencyStore(), f.pub, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestService_Run(t *testing.T) {
	t.Run("uploads a gzipped snapshot", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Save", mock.Anything, mock.AnythingOfType("*backup.Backup")).Return(nil)

		resp, err := f.svc.Run(context.Background(), f.tenantID, backup.TriggerManual)

		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, backup.ObjectKey(f.tenantID, fixedNow), resp.ObjectKey)
		assert.Equal(t, map[string]int{"clients": 2, "invoices": 1}, resp.TableCounts)
		f.repo.AssertNumberOfCalls(t, "Save", 2)

		body, err := f.store.Get(context.Background(), resp.ObjectKey)
		require.NoError(t, err)
		assert.Equal(t, int64(len(body)), resp.SizeBytes)
		zr, err := gzip.NewReader(bytes.NewReader(body))
		require.NoError(t, err)
		var snap backup.Snapshot
		require.NoError(t, json.NewDecoder(zr).Decode(&snap))
		assert.Equal(t, f.tenantID, snap.TenantID)
		assert.Len(t, snap.Tables["clients"], 2)

		require.Len(t, f.pub.events, 1)
		assert.Equal(t, backup.EventTypeBackupCompleted, f.pub.events[0].EventType())
	})

	t.Run("export failure is recorded", func(t *testing.T) {
		f := newFixture()
		f.exporter.err = errors.New("connection reset")
		var saved []backup.Status
		f.repo.On("Save", mock.Anything, mock.AnythingOfType("*backup.Backup")).
			Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*backup.Backup).Status) }).
			Return(nil)

		_, err := f.svc.Run(context.Background(), f.tenantID, backup.TriggerManual)

		require.Error(t, err)
		assert.Equal(t, []backup.Status{backup.StatusRunning, backup.StatusFailed}, saved)
		assert.Empty(t, f.store.Keys("backups/"))
		require.Len(t, f.pub.events, 1)
		assert.Equal(t, backup.EventTypeBackupFailed, f.pub.events[0].EventType())
	})

	t.Run("failure is recorded after the caller gave up", func(t *testing.T) {
		f := newFixture()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f.exporter.during = cancel
		f.exporter.err = context.Canceled
		var failedCtxErr error
		f.repo.On("Save", mock.Anything, mock.AnythingOfType("*backup.Backup")).
			Run(func(args mock.Arguments) {
				if args.Get(1).(*backup.Backup).Status == backup.StatusFailed {
					failedCtxErr = args.Get(0).(context.Context).Err()
				}
			}).
			Return(nil)

		_, err := f.svc.Run(ctx, f.tenantID, backup.TriggerManual)

		assert.ErrorIs(t, err, context.Canceled)
		f.repo.AssertNumberOfCalls(t, "Save", 2)
		assert.NoError(t, failedCtxErr)
	})
}

func TestService_RunScheduled(t *testing.T) {
	t.Run("once per day", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.svc.RunScheduled(context.Background(), f.tenantID))
		require.NoError(t, f.svc.RunScheduled(context.Background(), f.tenantID))

		assert.Equal(t, 1, f.exporter.calls)
	})

	t.Run("a failed run can be retried the same day", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.exporter.err = errors.New("connection reset")

		require.Error(t, f.svc.RunScheduled(context.Background(), f.tenantID))
		f.exporter.err = nil
		require.NoError(t, f.svc.RunScheduled(context.Background(), f.tenantID))

		assert.Equal(t, 2, f.exporter.calls)
		assert.Len(t, f.store.Keys("backups/"), 1)
	})
}

func TestService_Download(t *testing.T) {
	f := newFixture()
	running := backup.Start(f.tenantID, backup.TriggerManual, fixedNow)
	f.repo.On("FindByID", mock.Anything, f.tenantID, running.ID).Return(running, nil)

	_, err := f.svc.Download(context.Background(), f.tenantID, running.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	done := backup.Start(f.tenantID, backup.TriggerManual, fixedNow)
	require.NoError(t, done.Complete(10, nil, fixedNow.Add(time.Second)))
	f.repo.On("FindByID", mock.Anything, f.tenantID, done.ID).Return(done, nil)

	resp, err := f.svc.Download(context.Background(), f.tenantID, done.ID)
	require.NoError(t, err)
	assert.Contains(t, resp.URL, done.ObjectKey)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestService_Delete(t *testing.T) {
	f := newFixture()
	done := backup.Start(f.tenantID, backup.TriggerManual, fixedNow)
	require.NoError(t, done.Complete(3, nil, fixedNow))
	done.ClearDomainEvents()
	require.NoError(t, f.store.Put(context.Background(), done.ObjectKey, []byte("gz"), "application/gzip"))
	f.repo.On("FindByID", mock.Anything, f.tenantID, done.ID).Return(done, nil)
	f.repo.On("Delete", mock.Anything, f.tenantID, done.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), f.tenantID, done.ID))

	assert.Empty(t, f.store.Keys("backups/"))
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, backup.EventTypeBackupDeleted, f.pub.events[0].EventType())
}
