package socket

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub tracks the connected administrator sockets.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	logrus.WithField("userId", c.UserID).Info("WebSocket client registered")
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
		logrus.WithField("userId", c.UserID).Info("WebSocket client unregistered")
	}
}

// Broadcast queues message for every client and returns how many accepted it.
// Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(message []byte) int {
	h.mu.RLock()
	var slow []*Client
	delivered := 0
	for c := range h.clients {
		select {
		case c.send <- message:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logrus.WithField("userId", c.UserID).Warn("Dropping slow WebSocket client")
		h.Unregister(c)
	}
	return delivered
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
