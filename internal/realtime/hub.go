package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"storefront-backend/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultSendBuffer = 64

// Hub tracks connected websocket listeners and fans events out to them.
// A listener whose send buffer is full misses the event; nothing is queued
// beyond that buffer and nothing is replayed.
type Hub struct {
	log        *zap.Logger
	metrics    *metrics.Metrics
	upgrader   websocket.Upgrader
	sendBuffer int

	// upstream, when set, receives broadcasts instead of local delivery.
	// It is expected to call Deliver on every participating hub.
	upstream Broadcaster

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type HubOption func(*Hub)

func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithAllowedOrigins restricts the websocket handshake. "*" or no origins
// accepts any.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) {
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			if o == "*" {
				h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
				return
			}
			allowed[o] = struct{}{}
		}
		if len(allowed) == 0 {
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

func NewHub(log *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		log:        log.Named("realtime"),
		sendBuffer: defaultSendBuffer,
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetUpstream routes broadcasts through b, e.g. a cross-instance relay.
// Must be called before the hub starts serving.
func (h *Hub) SetUpstream(b Broadcaster) {
	h.upstream = b
}

func (h *Hub) Broadcast(ctx context.Context, ev Event) {
	if h.upstream != nil {
		h.upstream.Broadcast(ctx, ev)
		return
	}
	h.Deliver(ev)
}

// Deliver writes ev to every listener connected to this process.
func (h *Hub) Deliver(ev Event) {
	frame, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("Failed to encode realtime event", zap.String("event", ev.Name), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			dropped++
		}
	}
	h.metrics.EventDelivered(ev.Name)
	if dropped > 0 {
		h.log.Warn("Realtime event dropped for slow listeners",
			zap.String("event", ev.Name),
			zap.Int("dropped", dropped),
		)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket listener.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.ClientConnected()
	h.log.Info("Client connected", zap.String("client_id", c.id))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.ClientDisconnected()
		h.log.Info("Client disconnected", zap.String("client_id", c.id))
	}
}

// Close disconnects every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// handleFrame reacts to a frame sent by a listener. Only chat messages with
// a non-empty text are relayed; everything else is ignored.
func (h *Hub) handleFrame(c *client, frame []byte) {
	var ev Event
	if err := json.Unmarshal(frame, &ev); err != nil || ev.Name != EventChatMessage {
		return
	}

	var msg ChatMessage
	if err := json.Unmarshal(ev.Data, &msg); err != nil || msg.Message == "" {
		return
	}

	out, err := NewEvent(EventChatMessage, msg)
	if err != nil {
		return
	}
	h.log.Debug("Relaying chat message", zap.String("client_id", c.id))
	h.Broadcast(context.Background(), out)
}
