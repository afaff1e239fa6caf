// Package realtime pushes lifecycle events to connected browsers over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/writify/writify-backend/internal/domain/ports"
)

const broadcastBuffer = 64

// Hub owns the set of connected clients. Only the Run goroutine touches it.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan ports.Event
	done       chan struct{}

	clients   map[*Client]struct{}
	connected atomic.Int64
	logger    ports.Logger
}

func NewHub(logger ports.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ports.Event, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Add(1)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event ports.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}
	if change, ok := event.Payload.(ports.RoleChange); ok && event.Type == ports.EventRoleChanged {
		h.reassign(change)
	}
	for c := range h.clients {
		if !event.Audience.Includes(c.userID, c.role) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client", "user_id", c.userID)
			h.drop(c)
		}
	}
}

// reassign moves every connection of a user to its new role so role
// audiences follow profile changes without a reconnect.
func (h *Hub) reassign(change ports.RoleChange) {
	for c := range h.clients {
		if c.userID == change.UserID {
			c.role = change.Role
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Add(-1)
}

// Publish implements ports.EventPublisher. Events published after the hub
// stopped are discarded.
func (h *Hub) Publish(ctx context.Context, event ports.Event) error {
	select {
	case h.broadcast <- event:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish %s to websocket hub: %w", event.Type, ctx.Err())
	}
}

// Connected is the number of registered clients.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
