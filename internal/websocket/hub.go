package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub tracks connected dashboard clients and fans snapshot messages out to
// them. Writes are serialized per connection via the client's own mutex, as
// gorilla/websocket allows only one concurrent writer.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     zerolog.Logger
}

// Client wraps one WebSocket connection registered with the hub.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log.With().Str("component", "ws_hub").Logger(),
	}
}

// Register adds a connection and returns its client handle.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := &Client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Unregister removes a client; the caller closes the connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// HasClients reports whether any dashboard is listening, so callers can
// skip computing snapshots nobody would receive.
func (h *Hub) HasClients() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) > 0
}

// BroadcastSnapshot sends a snapshot message to every connected client.
// Failed clients are dropped.
func (h *Hub) BroadcastSnapshot(stats interface{}) {
	msg := SnapshotMessage{Event: EventSnapshot, Stats: stats}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(msg); err != nil {
			h.log.Debug().Err(err).Msg("Dropping unresponsive dashboard client")
			h.Unregister(c)
			c.conn.Close()
		}
	}
}

// Send writes a JSON message to the client connection.
func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}
