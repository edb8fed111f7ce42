package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	s := NewScheduler(config.SchedulerConfig{JobTimeout: time.Second}, zap.NewNop(), opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register("quote-expiry", "0 1 * * *", noop))
	assert.ErrorIs(t, s.Register("quote-expiry", "0 1 * * *", noop), ErrJobAlreadyRegistered)
	assert.ErrorIs(t, s.Register("broken", "every day", noop), ErrInvalidConfig)
	assert.ErrorIs(t, s.Register("seconds", "*/5 * * * * *", noop), ErrInvalidConfig, "six-field specs are rejected")

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, JobStatusPending, jobs[0].Status)
	assert.Nil(t, jobs[0].NextRunAt, "no next run before start")
}

func TestScheduler_RunNow(t *testing.T) {
	var (
		mu       sync.Mutex
		observed []string
	)
	s := newTestScheduler(t, WithObserver(func(name string, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, name)
	}))

	calls := 0
	require.NoError(t, s.Register("billing", "0 2 * * *", func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))
	require.NoError(t, s.Register("backup", "0 3 * * *", func(context.Context) error {
		return errors.New("bucket unavailable")
	}))

	assert.ErrorIs(t, s.RunNow(context.Background(), "billing"), ErrSchedulerNotRunning)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)
	require.NoError(t, s.RunNow(context.Background(), "billing"))
	assert.EqualError(t, s.RunNow(context.Background(), "backup"), "bucket unavailable")
	assert.Equal(t, 1, calls)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "backup", jobs[0].Name)
	assert.Equal(t, JobStatusFailed, jobs[0].Status)
	assert.Equal(t, "bucket unavailable", jobs[0].LastError)
	assert.Equal(t, JobStatusSuccess, jobs[1].Status)
	require.NotNil(t, jobs[1].LastRunAt)
	require.NotNil(t, jobs[1].NextRunAt)

	mu.Lock()
	assert.Equal(t, []string{"billing", "backup"}, observed)
	mu.Unlock()
}

func TestScheduler_PanicIsReported(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.Register("prune", "* * * * *", func(context.Context) error {
		panic("nil map")
	}))
	require.NoError(t, s.Start(context.Background()))

	err := s.RunNow(context.Background(), "prune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, JobStatusFailed, s.Jobs()[0].Status)
}

func TestScheduler_RejectsOverlappingRuns(t *testing.T) {
	s := newTestScheduler(t)
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Register("slow", "0 0 * * *", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	require.NoError(t, s.Start(context.Background()))

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background(), "slow") }()
	<-started

	assert.ErrorIs(t, s.RunNow(context.Background(), "slow"), ErrJobInProgress)
	close(release)
	require.NoError(t, <-done)
}

func TestForEachTenant(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	provider := TenantProviderFunc(func(context.Context) ([]uuid.UUID, error) {
		return []uuid.UUID{a, b, c}, nil
	})

	var seen []uuid.UUID
	job := ForEachTenant(provider, zap.NewNop(), func(_ context.Context, tenantID uuid.UUID) error {
		seen = append(seen, tenantID)
		if tenantID == b {
			return errors.New("db timeout")
		}
		return nil
	})

	err := job(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), b.String())
	assert.Equal(t, []uuid.UUID{a, b, c}, seen, "a failing tenant does not stop the others")

	failing := ForEachTenant(TenantProviderFunc(func(context.Context) ([]uuid.UUID, error) {
		return nil, errors.New("down")
	}), zap.NewNop(), nil)
	assert.ErrorContains(t, failing(context.Background()), "failed to list tenants")
}
