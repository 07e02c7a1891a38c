package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces comment traffic on the shared redis instance.
// The websocket hub strips it back off before routing to topics.
const ChannelPrefix = "comments."

// NewRedisClient connects and verifies the connection with a ping.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// Publisher pushes freshly stored comments onto redis pub/sub so every API
// instance's websocket hub sees them, not just the one that served the POST.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish marshals the payload and publishes it on the prefixed channel for
// the topic ("chapter.<id>" or "novel.<id>").
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return p.client.Publish(ctx, ChannelPrefix+topic, data).Err()
}
