package wshub

import (
	"context"
	"sync"
	"time"

	"partylobby/internal/registry"

	"github.com/coder/websocket"
)

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   registry.ConnID
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(id registry.ConnID, conn *websocket.Conn, buffer int) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, buffer),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket connection,
// pinging the peer every pingInterval. It returns when ctx is done, Send is
// closed, or a write fails.
func (c *Client) WritePump(ctx context.Context, writeTimeout, pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.Send:
			if !ok {
				return nil
			}
			if err := c.write(ctx, writeTimeout, msg); err != nil {
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (c *Client) write(ctx context.Context, timeout time.Duration, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Conn.Write(ctx, websocket.MessageText, msg)
}

// Hub holds every live connection, bound to a room or not.
type Hub struct {
	mu      sync.RWMutex
	clients map[registry.ConnID]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[registry.ConnID]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id registry.ConnID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if ok {
		close(c.Send)
		delete(h.clients, id)
	}
	return ok
}

// Deliver queues data for one client. Non-blocking: reports false if the
// client is gone or its channel is full.
func (h *Hub) Deliver(id registry.ConnID, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[id]
	if !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
