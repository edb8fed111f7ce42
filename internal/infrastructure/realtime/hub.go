// Package realtime pushes change notifications, presence and alerts to
// browsers over websockets. Every connection belongs to one tenant room.
package realtime

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	MessageChange   = "change"
	MessagePresence = "presence"
	MessageAlert    = "alert"

	maxMessageSize = 4096
)

// Message is the JSON frame sent to clients
type Message struct {
	Type   string `json:"type"`
	Table  string `json:"table,omitempty"`
	Action string `json:"action,omitempty"`
	ID     string `json:"id,omitempty"`
	Users  any    `json:"users,omitempty"`
	Alert  any    `json:"alert,omitempty"`
}

func ChangeMessage(table, action string, id uuid.UUID) Message {
	return Message{Type: MessageChange, Table: table, Action: action, ID: id.String()}
}

func PresenceMessage(users any) Message {
	return Message{Type: MessagePresence, Users: users}
}

func AlertMessage(alert any) Message {
	return Message{Type: MessageAlert, Alert: alert}
}

// Client is one websocket connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	tenantID uuid.UUID
	userID   uuid.UUID

	mu     sync.Mutex
	closed bool
}

type Option func(*Hub)

// WithConnectionObserver is told about every opened and closed connection
func WithConnectionObserver(opened, closed func()) Option {
	return func(h *Hub) {
		h.onOpen = opened
		h.onClose = closed
	}
}

// Hub tracks connections per tenant and fans messages out to them
type Hub struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	writeTimeout time.Duration
	sendBuffer   int
	logger       *zap.Logger
	onOpen       func()
	onClose      func()

	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	closed bool
}

func NewHub(cfg config.RealtimeConfig, logger *zap.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		pingInterval: cfg.PingInterval,
		writeTimeout: cfg.WriteTimeout,
		sendBuffer:   cfg.SendBuffer,
		logger:       logger.Named("realtime"),
		onOpen:       func() {},
		onClose:      func() {},
		rooms:        make(map[uuid.UUID]map[*Client]struct{}),
	}
	if h.pingInterval <= 0 {
		h.pingInterval = 30 * time.Second
	}
	if h.writeTimeout <= 0 {
		h.writeTimeout = 10 * time.Second
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = 64
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// originChecker accepts requests without an Origin header (non-browser
// clients), any origin for "*" or an empty list, otherwise exact matches.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// Serve upgrades the request and keeps the connection in the tenant room
// until either side closes it. Authentication happens before this call.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, tenantID, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.sendBuffer),
		tenantID: tenantID,
		userID:   userID,
	}
	if !h.register(c) {
		_ = conn.Close()
		return websocket.ErrCloseSent
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	room, ok := h.rooms[c.tenantID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.tenantID] = room
	}
	room[c] = struct{}{}
	h.onOpen()
	h.logger.Debug("Client connected",
		zap.String("tenant_id", c.tenantID.String()),
		zap.String("user_id", c.userID.String()))
	return true
}

// unregister is idempotent; closing the send channel makes the write pump
// send a close frame and exit.
func (h *Hub) unregister(c *Client) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	h.mu.Lock()
	if room, ok := h.rooms[c.tenantID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.tenantID)
		}
	}
	h.mu.Unlock()
	h.onClose()
}

// Broadcast sends msg to every connection of the tenant. A client whose
// buffer is full is evicted rather than slowing down the others.
func (h *Hub) Broadcast(tenantID uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode realtime message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	room := h.rooms[tenantID]
	clients := make([]*Client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			h.logger.Warn("Evicting slow realtime client",
				zap.String("tenant_id", tenantID.String()),
				zap.String("user_id", c.userID.String()))
			h.unregister(c)
		}
	}
}

// Count returns the number of open connections of a tenant
func (h *Hub) Count(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tenantID])
}

// Close disconnects everyone and refuses new connections
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Client
	for _, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		h.unregister(c)
	}
}

// trySend reports false only when the buffer is full
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	pongWait := 2 * c.hub.pingInterval
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// clients do not send anything meaningful; reading drives pong handling
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Realtime read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		}
	}
}
