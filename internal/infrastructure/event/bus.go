// Package event is the in-process domain event bus. Synchronous handlers run
// inside Publish; async ones (Kafka, realtime, mail) run on a worker pool so a
// slow sink never holds up a request.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bizdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 1024
)

type job struct {
	ctx     context.Context
	handler shared.EventHandler
	event   shared.DomainEvent
}

// Bus implements shared.EventBus
type Bus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	workers  int
	queue    chan job
	// mu orders enqueues against closing the queue in Stop
	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

type Option func(*Bus)

func WithWorkers(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan job, n)
		}
	}
}

func NewBus(logger *zap.Logger, opts ...Option) *Bus {
	b := &Bus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		workers:  defaultWorkers,
		queue:    make(chan job, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events in order. Handler errors are logged, never returned,
// so a failing side effect cannot undo a committed write.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, sub := range b.registry.lookup(ev.EventType()) {
			if sub.async && b.tryEnqueue(job{ctx: context.WithoutCancel(ctx), handler: sub.handler, event: ev}) {
				continue
			}
			b.dispatch(ctx, sub.handler, ev)
		}
	}
	return nil
}

// tryEnqueue reports false when the pool is not running
func (b *Bus) tryEnqueue(j job) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running {
		return false
	}
	select {
	case b.queue <- j:
	default:
		b.dropped.Add(1)
		b.logger.Warn("Event queue full, dropping async delivery",
			zap.String("event_type", j.event.EventType()),
			zap.String("event_id", j.event.EventID().String()),
		)
	}
	return true
}

// Subscribe registers a synchronous handler. Without eventTypes the handler's
// own EventTypes are used.
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	b.subscribe(handler, false, eventTypes)
}

// SubscribeAsync registers a handler run on the worker pool once started.
// Before Start it behaves like Subscribe.
func (b *Bus) SubscribeAsync(handler shared.EventHandler, eventTypes ...string) {
	b.subscribe(handler, true, eventTypes)
}

func (b *Bus) subscribe(handler shared.EventHandler, async bool, eventTypes []string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, async, eventTypes...)
	b.logger.Debug("Event handler subscribed",
		zap.Strings("event_types", eventTypes),
		zap.Bool("async", async),
		zap.String("handler", fmt.Sprintf("%T", handler)),
	)
}

func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *Bus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.running = true
	for range b.workers {
		b.wg.Add(1)
		go b.work()
	}
	b.logger.Info("Event bus started", zap.Int("workers", b.workers))
	return nil
}

// Stop drains queued deliveries until ctx is done
func (b *Bus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("Event bus stopped", zap.Int64("dropped", b.dropped.Load()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain: %w", ctx.Err())
	}
}

func (b *Bus) work() {
	defer b.wg.Done()
	for j := range b.queue {
		b.dispatch(j.ctx, j.handler, j.event)
	}
}

func (b *Bus) dispatch(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.String("handler", fmt.Sprintf("%T", handler)),
				zap.Any("panic", r),
			)
		}
	}()
	if err := handler.Handle(ctx, ev); err != nil {
		b.logger.Error("Event handler failed",
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()),
			zap.String("handler", fmt.Sprintf("%T", handler)),
			zap.Error(err),
		)
	}
}

// Dropped counts async deliveries lost to a full queue
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

var _ shared.EventBus = (*Bus)(nil)
