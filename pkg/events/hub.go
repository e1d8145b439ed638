package events

import (
	"context"
	"log/slog"
	"sync"
)

// Hub maintains subscribers and broadcasts events to them.
type Hub struct {
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// guards the client count for readers outside Run
	mu    sync.RWMutex
	count int
}

// NewHub creates a Hub. Call Run before publishing.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger.With("component", "events.hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop. It returns when ctx is done, closing all clients.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.drop(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount()
			h.logger.Debug("observer connected", "observers", len(h.clients))

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
				h.logger.Debug("observer disconnected", "observers", len(h.clients))
			}

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					h.drop(client)
					h.logger.Warn("dropped slow observer")
				}
			}
		}
	}
}

// drop must only be called from Run.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Publish queues an event for all subscribers without blocking.
func (h *Hub) Publish(e Event) {
	data, err := e.encode()
	if err != nil {
		h.logger.Warn("encode event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, dropping event", "type", e.Type, "room", e.Room)
	}
}

// Subscribers returns the number of connected observers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
