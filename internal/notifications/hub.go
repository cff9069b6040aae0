package notifications

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"sync"

	"quantum/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

// Max total connections before registration is refused.
const maxTotalConns = 1024

// Hub fans events out to every connected WebSocket client. All clients see
// the same stream; toasts and render signals are not per-user in this
// single-session model.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
	rdb   *redis.Client
}

// NewHub creates a Hub. A nil Redis client limits the hub to locally
// broadcast events.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		rdb:   rdb,
	}
}

// Register adds a connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) >= maxTotalConns {
		return errors.New("server connection limit reached")
	}
	h.conns[conn] = struct{}{}
	observability.WebSocketConnections.Inc()
	return nil
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		observability.WebSocketConnections.Dec()
	}
	h.mu.Unlock()
}

// Broadcast sends the payload to every connection. Write failures drop the
// payload for that connection; the read loop notices the dead socket.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
}

// StartWiring subscribes to the Redis event channel and forwards every
// message to connected clients until ctx is canceled.
func (h *Hub) StartWiring(ctx context.Context) error {
	if h.rdb == nil {
		return nil
	}
	sub := h.rdb.Subscribe(ctx, Channel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in event subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					h.Broadcast([]byte(msg.Payload))
				}()
			}
		}
	}()

	return nil
}

// Shutdown closes all connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
		observability.WebSocketConnections.Dec()
	}
	return nil
}
