// Package scheduler runs the periodic background jobs: subscription billing,
// overdue sweeps, quote expiry, backups and presence pruning.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is the unit of work a job runs on every tick
type JobFunc func(ctx context.Context) error

// JobStatus represents the outcome of the last run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobInfo is a snapshot of a registered job
type JobInfo struct {
	Name         string        `json:"name"`
	Spec         string        `json:"spec"`
	Status       JobStatus     `json:"status"`
	LastError    string        `json:"last_error,omitempty"`
	LastRunAt    *time.Time    `json:"last_run_at,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	NextRunAt    *time.Time    `json:"next_run_at,omitempty"`
}

// Observer is notified after every run, e.g. to record metrics
type Observer func(name string, duration time.Duration, err error)

type job struct {
	name    string
	spec    string
	fn      JobFunc
	entryID cron.EntryID
	running atomic.Bool

	mu           sync.Mutex
	status       JobStatus
	lastError    string
	lastRunAt    *time.Time
	lastDuration time.Duration
}

// Scheduler wraps robfig/cron with per-run timeouts, panic recovery and
// overlap protection shared by cron ticks and manual triggers.
type Scheduler struct {
	cron      *cron.Cron
	timeout   time.Duration
	logger    *zap.Logger
	observers []Observer

	mu        sync.Mutex
	jobs      map[string]*job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

type Option func(*Scheduler)

func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, o)
	}
}

// WithLocation evaluates cron specs in loc instead of the local zone
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.cron = newCron(s.logger, loc)
	}
}

func NewScheduler(cfg config.SchedulerConfig, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	s := &Scheduler{
		timeout: timeout,
		logger:  logger.Named("scheduler"),
		jobs:    make(map[string]*job),
	}
	s.cron = newCron(s.logger, time.Local)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newCron(logger *zap.Logger, loc *time.Location) *cron.Cron {
	l := &cronLogger{logger: logger}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}

// Register adds a job with a standard five-field cron spec
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w: job %s spec %q: %v", ErrInvalidConfig, name, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyRegistered, name)
	}

	j := &job{name: name, spec: spec, fn: fn, status: JobStatusPending}
	id, err := s.cron.AddFunc(spec, func() { s.runScheduled(j) })
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	j.entryID = id
	s.jobs[name] = j
	s.logger.Debug("Job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.isRunning = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)), zap.Duration("job_timeout", s.timeout))
	return nil
}

// Stop prevents new runs, cancels running jobs and waits for them
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow triggers a job immediately and waits for it
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	running := s.isRunning
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !running {
		return ErrSchedulerNotRunning
	}
	if !j.running.CompareAndSwap(false, true) {
		return ErrJobInProgress
	}
	defer j.running.Store(false)

	s.wg.Add(1)
	defer s.wg.Done()
	return s.execute(ctx, j)
}

// Jobs lists the registered jobs sorted by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		j.mu.Lock()
		info := JobInfo{
			Name:         j.name,
			Spec:         j.spec,
			Status:       j.status,
			LastError:    j.lastError,
			LastRunAt:    j.lastRunAt,
			LastDuration: j.lastDuration,
		}
		j.mu.Unlock()
		if s.isRunning {
			if next := s.cron.Entry(j.entryID).Next; !next.IsZero() {
				info.NextRunAt = &next
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(a, b int) bool { return infos[a].Name < infos[b].Name })
	return infos
}

func (s *Scheduler) runScheduled(j *job) {
	s.mu.Lock()
	ctx := s.ctx
	running := s.isRunning
	s.mu.Unlock()
	if !running || ctx == nil {
		return
	}
	if !j.running.CompareAndSwap(false, true) {
		s.logger.Info("Skipping tick, job still running", zap.String("job", j.name))
		return
	}
	defer j.running.Store(false)

	s.wg.Add(1)
	defer s.wg.Done()
	_ = s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *job) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	j.mu.Lock()
	j.status = JobStatusRunning
	j.lastRunAt = &start
	j.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
		duration := time.Since(start)

		j.mu.Lock()
		j.lastDuration = duration
		if err != nil {
			j.status = JobStatusFailed
			j.lastError = err.Error()
		} else {
			j.status = JobStatusSuccess
			j.lastError = ""
		}
		j.mu.Unlock()

		if err != nil {
			s.logger.Error("Job failed", zap.String("job", j.name), zap.Duration("duration", duration), zap.Error(err))
		} else {
			s.logger.Info("Job completed", zap.String("job", j.name), zap.Duration("duration", duration))
		}
		for _, o := range s.observers {
			o(j.name, duration, err)
		}
	}()

	s.logger.Info("Job started", zap.String("job", j.name))
	return j.fn(ctx)
}

// TenantProvider provides the tenants a per-tenant job iterates over
type TenantProvider interface {
	GetAllActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TenantProviderFunc adapts a function to TenantProvider
type TenantProviderFunc func(ctx context.Context) ([]uuid.UUID, error)

func (f TenantProviderFunc) GetAllActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f(ctx)
}

// ForEachTenant wraps a per-tenant function into a job. A failing tenant does
// not stop the others; the joined errors are returned at the end.
func ForEachTenant(provider TenantProvider, logger *zap.Logger, fn func(ctx context.Context, tenantID uuid.UUID) error) JobFunc {
	return func(ctx context.Context) error {
		tenantIDs, err := provider.GetAllActiveTenantIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}
		var errs []error
		for _, tenantID := range tenantIDs {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			if err := fn(ctx, tenantID); err != nil {
				logger.Warn("Tenant job failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
				errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			}
		}
		return errors.Join(errs...)
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
