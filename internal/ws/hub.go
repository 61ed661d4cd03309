// File: internal/ws/hub.go
package ws

import (
	"encoding/json"
	"sync"

	"github.com/appleaww/messenger/internal/services"
)

// Envelope wraps every payload sent to a client with its logical
// destination, so one socket can multiplex several queues and topics.
type Envelope struct {
	Destination string      `json:"destination"`
	Payload     interface{} `json:"payload"`
}

// Hub tracks every live client keyed by the owning user. It provides the two
// delivery primitives the core relies on: addressed fan-out to all sessions
// of one user, and broadcast to everyone connected. A single process owns
// all live connections it tracks.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]map[*Client]struct{}
	logger   services.Logger
}

func NewHub(logger services.Logger) *Hub {
	return &Hub{
		sessions: make(map[uint]map[*Client]struct{}),
		logger:   logger,
	}
}

// Register adds a client to the registry of its user.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.sessions[c.principal.UserID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.sessions[c.principal.UserID] = clients
	}
	clients[c] = struct{}{}
	h.logger.Debug("session registered", "user_id", c.principal.UserID, "session_id", c.sessionID, "sessions", len(clients))
}

// Unregister removes a client and signals its write pump to stop. Safe to
// call more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	clients, ok := h.sessions[c.principal.UserID]
	if ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.sessions, c.principal.UserID)
		}
	}
	h.mu.Unlock()

	c.shutdown()
	h.logger.Debug("session unregistered", "user_id", c.principal.UserID, "session_id", c.sessionID)
}

// SendToUser fans the payload out to every live session of the user.
// Delivery is best-effort: a session whose egress buffer is full is dropped
// from the registry, and a user with no sessions receives nothing.
func (h *Hub) SendToUser(userID uint, destination string, payload interface{}) {
	data, err := json.Marshal(Envelope{Destination: destination, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal delivery payload", "destination", destination, "error", err)
		return
	}

	for _, c := range h.clientsOf(userID) {
		h.deliver(c, data, destination)
	}
}

// Publish broadcasts the payload to every connected client.
func (h *Hub) Publish(topic string, payload interface{}) {
	data, err := json.Marshal(Envelope{Destination: topic, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal broadcast payload", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	var all []*Client
	for _, clients := range h.sessions {
		for c := range clients {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.deliver(c, data, topic)
	}
}

// SessionCount reports the number of live sessions for a user.
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) clientsOf(userID uint) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.sessions[userID]))
	for c := range h.sessions[userID] {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) deliver(c *Client, data []byte, destination string) {
	select {
	case c.egress <- data:
	case <-c.done:
	default:
		// A client that cannot drain its egress is beyond saving; cut it
		// loose rather than block every other delivery.
		h.logger.Warn("dropping slow session", "user_id", c.principal.UserID, "session_id", c.sessionID, "destination", destination)
		h.Unregister(c)
		c.conn.Close()
	}
}
