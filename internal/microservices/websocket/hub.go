package websocket

import (
	"log/slog"
	"sync"
)

// Hub tracks every connected client and the topics they watch. Each
// connection runs its own read/write goroutines; the hub itself is guarded
// by a mutex so a redis-fed broadcast and an unsubscribe can race safely.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]*Topic
	clients map[string]*Client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		topics:  make(map[string]*Topic),
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a freshly upgraded connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	h.logger.Info("websocket client connected", "client_id", c.ID)
}

// Unregister removes a client from every topic it watched and closes its
// send channel, which terminates the write pump.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)

	for name, topic := range h.topics {
		topic.Remove(c)
		if topic.ClientCount() == 0 {
			delete(h.topics, name)
		}
	}

	close(c.send)
	h.logger.Info("websocket client disconnected", "client_id", c.ID)
}

// Subscribe attaches a client to a topic, creating the topic on first use.
func (h *Hub) Subscribe(c *Client, topicName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.topics[topicName]
	if !ok {
		topic = NewTopic(topicName)
		h.topics[topicName] = topic
	}
	topic.Add(c)
}

// Unsubscribe detaches a client from a topic; empty topics are dropped.
func (h *Hub) Unsubscribe(c *Client, topicName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.topics[topicName]
	if !ok {
		return
	}
	topic.Remove(c)
	if topic.ClientCount() == 0 {
		delete(h.topics, topicName)
	}
}

// Broadcast wraps the payload in a topic envelope and fans it out to the
// topic's subscribers. Unknown topics mean nobody is watching; that is fine.
func (h *Hub) Broadcast(topicName string, message []byte) {
	h.mu.RLock()
	topic, ok := h.topics[topicName]
	h.mu.RUnlock()
	if !ok {
		return
	}

	envelope, err := NewServerMessage(topicName, message).ToJSON()
	if err != nil {
		return
	}
	topic.Broadcast(envelope)
}

// TopicCount reports how many live topics exist, for the health endpoint.
func (h *Hub) TopicCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
