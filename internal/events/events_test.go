package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBroadcaster struct {
	mu     sync.Mutex
	topics []string
	bodies []string
}

func (c *captureBroadcaster) Broadcast(topic string, message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.bodies = append(c.bodies, string(message))
}

func (c *captureBroadcaster) snapshot() ([]string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.topics...), append([]string(nil), c.bodies...)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	capture := &captureBroadcaster{}
	sub := NewSubscriber(client, capture, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	// give the pattern subscription a moment to establish
	time.Sleep(50 * time.Millisecond)

	pub := NewPublisher(client)
	payload := map[string]string{"id": "c-1", "content": "first!"}
	require.NoError(t, pub.Publish(ctx, "chapter.42", payload))

	require.Eventually(t, func() bool {
		topics, _ := capture.snapshot()
		return len(topics) == 1
	}, 2*time.Second, 10*time.Millisecond)

	topics, bodies := capture.snapshot()
	assert.Equal(t, "chapter.42", topics[0], "channel prefix must be stripped")
	assert.JSONEq(t, `{"id":"c-1","content":"first!"}`, bodies[0])

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSubscriberStopsOnCancel(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	sub := NewSubscriber(client, &captureBroadcaster{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}
}

func TestPublisherRejectsUnmarshalablePayload(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	pub := NewPublisher(client)
	err := pub.Publish(context.Background(), "novel.1", make(chan int))
	assert.Error(t, err)
}
