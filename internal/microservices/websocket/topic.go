package websocket

import (
	"log/slog"
	"sync"
)

// Topic = one comment thread's live feed, keyed "novel.<id>" or
// "chapter.<id>". Clients come and go; the hub drops the topic once empty.
type Topic struct {
	Name    string
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewTopic(name string) *Topic {
	return &Topic{
		Name:    name,
		clients: make(map[string]*Client),
	}
}

// Add registers a client on the topic; re-adding is a no-op.
func (t *Topic) Add(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clients[c.ID] == nil {
		t.clients[c.ID] = c
		slog.Debug("client subscribed", "topic", t.Name, "client_id", c.ID)
	}
}

// Remove drops a client from the topic.
func (t *Topic) Remove(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clients[c.ID] != nil {
		delete(t.clients, c.ID)
		slog.Debug("client unsubscribed", "topic", t.Name, "client_id", c.ID)
	}
}

// Broadcast fans a message out to every subscriber. A client whose send
// buffer is full is skipped rather than blocking the whole topic.
func (t *Topic) Broadcast(message []byte) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, client := range t.clients {
		select {
		case client.send <- message:
		default:
			slog.Warn("dropping message for slow client", "topic", t.Name, "client_id", client.ID)
		}
	}
}

func (t *Topic) ClientCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}
