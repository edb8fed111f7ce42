package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "invoice", uuid.New(), uuid.New()),
		Number:          "INV-2025-0001",
	}
}

type testHandler struct {
	types   []string
	err     error
	panics  bool
	mu      sync.Mutex
	handled []shared.DomainEvent
	done    chan struct{}
}

func newTestHandler(types ...string) *testHandler {
	return &testHandler{types: types, done: make(chan struct{}, 16)}
}

func (h *testHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, ev)
	h.mu.Unlock()
	h.done <- struct{}{}
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.types }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestBus_PublishSync(t *testing.T) {
	bus := NewBus(zap.NewNop())
	sent := newTestHandler("invoice.sent")
	other := newTestHandler("quote.sent")
	bus.Subscribe(sent)
	bus.Subscribe(other)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.sent"), newTestEvent("invoice.sent")))
	assert.Equal(t, 2, sent.count())
	assert.Zero(t, other.count())
}

func TestBus_Wildcard(t *testing.T) {
	bus := NewBus(zap.NewNop())
	all := newTestHandler(Wildcard)
	implicit := newTestHandler()
	bus.Subscribe(all)
	bus.Subscribe(implicit)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("client.created")))
	assert.Equal(t, 1, all.count())
	assert.Equal(t, 1, implicit.count())
	assert.Equal(t, 2, bus.registry.Count("anything"))
}

func TestBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := newTestHandler("invoice.sent")
	bus.Subscribe(h, "quote.accepted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.sent")))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("quote.accepted")))
	assert.Equal(t, 1, h.count())
}

func TestBus_FailuresAreIsolated(t *testing.T) {
	bus := NewBus(zap.NewNop())
	failing := newTestHandler("invoice.sent")
	failing.err = errors.New("smtp down")
	panicking := newTestHandler("invoice.sent")
	panicking.panics = true
	healthy := newTestHandler("invoice.sent")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.sent")))
	assert.Equal(t, 1, healthy.count())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := newTestHandler("invoice.sent")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.sent")))
	assert.Zero(t, h.count())
	assert.Zero(t, bus.registry.Count("invoice.sent"))
}

func TestBus_AsyncDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop(), WithWorkers(2))
	h := newTestHandler("invoice.sent")
	bus.SubscribeAsync(h)

	t.Run("runs inline before start", func(t *testing.T) {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.sent")))
		assert.Equal(t, 1, h.count())
		<-h.done
	})

	require.NoError(t, bus.Start(context.Background()))

	t.Run("runs on the pool after start, even with a cancelled request context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, bus.Publish(ctx, newTestEvent("invoice.sent")))
		select {
		case <-h.done:
		case <-time.After(time.Second):
			t.Fatal("async handler did not run")
		}
		assert.Equal(t, 2, h.count())
	})

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
	require.NoError(t, bus.Stop(stopCtx), "stop is idempotent")
}

func TestBus_FullQueueDrops(t *testing.T) {
	bus := NewBus(zap.NewNop(), WithWorkers(1), WithQueueSize(1))
	block := make(chan struct{})
	slow := shared.EventHandlerFunc{Types: []string{"x"}, Fn: func(context.Context, shared.DomainEvent) error {
		<-block
		return nil
	}}
	bus.SubscribeAsync(slow)
	require.NoError(t, bus.Start(context.Background()))

	for range 5 {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	}
	assert.Positive(t, bus.Dropped())
	close(block)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
}

func TestNewEnvelope(t *testing.T) {
	ev := newTestEvent("invoice.sent")
	actor := uuid.New()
	ev.SetActor(actor)

	env, err := NewEnvelope(ev)
	require.NoError(t, err)
	assert.Equal(t, ev.EventID(), env.ID)
	assert.Equal(t, "invoice", env.AggregateType)
	require.NotNil(t, env.ActorID)
	assert.Equal(t, actor, *env.ActorID)

	raw, err := env.Marshal()
	require.NoError(t, err)
	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			Number string `json:"number"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "invoice.sent", decoded.Type)
	assert.Equal(t, "INV-2025-0001", decoded.Payload.Number)
}
