package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T, cfg config.RealtimeConfig, opts ...Option) (*Hub, string, func(tenant uuid.UUID) *websocket.Conn) {
	t.Helper()
	hub := NewHub(cfg, zap.NewNop(), opts...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := uuid.MustParse(r.URL.Query().Get("tenant"))
		_ = hub.Serve(w, r, tenant, uuid.New())
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	dial := func(tenant uuid.UUID) *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?tenant="+tenant.String(), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	return hub, wsURL, dial
}

func waitForCount(t *testing.T, hub *Hub, tenant uuid.UUID, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count(tenant) == n }, time.Second, 5*time.Millisecond)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastStaysInTenantRoom(t *testing.T) {
	tenantA, tenantB := uuid.New(), uuid.New()
	var opened, closed atomic.Int32
	hub, _, dial := startHub(t, config.RealtimeConfig{}, WithConnectionObserver(
		func() { opened.Add(1) },
		func() { closed.Add(1) },
	))

	a := dial(tenantA)
	b := dial(tenantB)
	waitForCount(t, hub, tenantA, 1)
	waitForCount(t, hub, tenantB, 1)

	id := uuid.New()
	hub.Broadcast(tenantA, ChangeMessage("invoices", "sent", id))

	msg := readMessage(t, a)
	assert.Equal(t, MessageChange, msg.Type)
	assert.Equal(t, "invoices", msg.Table)
	assert.Equal(t, "sent", msg.Action)
	assert.Equal(t, id.String(), msg.ID)

	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "tenant B receives nothing")

	require.NoError(t, a.Close())
	waitForCount(t, hub, tenantA, 0)
	assert.EqualValues(t, 2, opened.Load())
	assert.EqualValues(t, 1, closed.Load())
}

func TestHub_EvictsSlowClient(t *testing.T) {
	tenant := uuid.New()
	hub, _, dial := startHub(t, config.RealtimeConfig{SendBuffer: 1})
	dial(tenant)
	waitForCount(t, hub, tenant, 1)

	// the client never reads, so its buffer fills up
	for i := 0; i < 100 && hub.Count(tenant) > 0; i++ {
		hub.Broadcast(tenant, PresenceMessage([]string{strings.Repeat("x", 1024)}))
	}
	waitForCount(t, hub, tenant, 0)
}

func TestHub_CloseRejectsNewConnections(t *testing.T) {
	tenant := uuid.New()
	hub, wsURL, dial := startHub(t, config.RealtimeConfig{})
	conn := dial(tenant)
	waitForCount(t, hub, tenant, 1)

	hub.Close()
	waitForCount(t, hub, tenant, 0)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	late, _, err := websocket.DefaultDialer.Dial(wsURL+"?tenant="+tenant.String(), nil)
	if err == nil {
		defer late.Close()
		require.NoError(t, late.SetReadDeadline(time.Now().Add(time.Second)))
		_, _, err = late.ReadMessage()
		assert.Error(t, err)
	}
	assert.Zero(t, hub.Count(tenant))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.bizdesk.test"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "https://app.bizdesk.test")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.test")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

type invoiceSent struct {
	shared.BaseDomainEvent
}

func TestChangeForwarder(t *testing.T) {
	tenant := uuid.New()
	hub, _, dial := startHub(t, config.RealtimeConfig{})
	conn := dial(tenant)
	waitForCount(t, hub, tenant, 1)

	fwd := NewChangeForwarder(hub)
	assert.Equal(t, []string{"*"}, fwd.EventTypes())

	ev := &invoiceSent{BaseDomainEvent: shared.NewBaseDomainEvent("cash_register.closed", "cash_register", uuid.New(), tenant)}
	require.NoError(t, fwd.Handle(context.Background(), ev))

	msg := readMessage(t, conn)
	assert.Equal(t, "cash_registers", msg.Table)
	assert.Equal(t, "closed", msg.Action)
	assert.Equal(t, ev.AggregateID().String(), msg.ID)

	assert.Equal(t, "invoices", TableFor("invoice"))
}
