package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub is the connection registry. It tracks every live client per user and
// the subscriber set per conversation, and fans events out to them.
//
// Subscriptions are reference-counted per (conversation, user): a user with
// two devices on the same conversation stays subscribed until the second
// device disconnects. All fan-out goes through each client's bounded send
// queue, so broadcasting never blocks on a slow connection.
type Hub struct {
	mu sync.RWMutex

	// connections indexes every live client by user, then connection id.
	connections map[uint]map[string]*Client

	// subscribers holds, per conversation, the subscribed users and how many
	// of their connections are attached.
	subscribers map[uint]map[uint]int
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[uint]map[string]*Client),
		subscribers: make(map[uint]map[uint]int),
	}
}

// Register adds a client to the registry.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.connections[client.UserID]
	if !ok {
		clients = make(map[string]*Client)
		h.connections[client.UserID] = clients
	}
	clients[client.ConnID] = client

	slog.Debug("client registered",
		"user_id", client.UserID, "conn_id", client.ConnID, "connections", len(clients))
}

// Unregister removes the client and reports whether it was the user's last
// connection. The caller uses that to decide on the offline transition.
func (h *Hub) Unregister(userID uint, connID string) (last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.connections[userID]
	if !ok {
		return false
	}
	if _, ok := clients[connID]; !ok {
		return false
	}
	delete(clients, connID)
	if len(clients) == 0 {
		delete(h.connections, userID)
		return true
	}
	return false
}

// Subscribe attaches one of the user's connections to the conversation.
func (h *Hub) Subscribe(conversationID, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	users, ok := h.subscribers[conversationID]
	if !ok {
		users = make(map[uint]int)
		h.subscribers[conversationID] = users
	}
	users[userID]++
}

// Unsubscribe detaches one connection. The user leaves the subscriber set
// only when no connection of theirs remains on the conversation; an empty set
// is removed entirely.
func (h *Hub) Unsubscribe(conversationID, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	users, ok := h.subscribers[conversationID]
	if !ok {
		return
	}
	users[userID]--
	if users[userID] <= 0 {
		delete(users, userID)
	}
	if len(users) == 0 {
		delete(h.subscribers, conversationID)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// OnlineUsers returns the ids of every connected user.
func (h *Hub) OnlineUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uint, 0, len(h.connections))
	for userID := range h.connections {
		users = append(users, userID)
	}
	return users
}

// SendToUser delivers the event to every connection of one user.
func (h *Hub) SendToUser(userID uint, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "user_id", userID, "error", err)
		return
	}

	h.mu.RLock()
	clients := h.clientsOf(userID)
	h.mu.RUnlock()

	for _, client := range clients {
		client.Enqueue(data)
	}
}

// BroadcastToConversation delivers the event to every connection of every
// subscribed user. The payload is marshaled once; exclude, when non-nil,
// skips that user's connections (used for typing and read echoes).
func (h *Hub) BroadcastToConversation(conversationID uint, event any, exclude *uint) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "conversation_id", conversationID, "error", err)
		return
	}

	h.mu.RLock()
	var targets []*Client
	for userID := range h.subscribers[conversationID] {
		if exclude != nil && userID == *exclude {
			continue
		}
		targets = append(targets, h.clientsOf(userID)...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.Enqueue(data)
	}
}

// clientsOf snapshots a user's clients; callers must hold at least a read
// lock.
func (h *Hub) clientsOf(userID uint) []*Client {
	clients := make([]*Client, 0, len(h.connections[userID]))
	for _, client := range h.connections[userID] {
		clients = append(clients, client)
	}
	return clients
}
