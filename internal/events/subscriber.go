package events

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Broadcaster is where subscribed events land; in production it is the
// websocket hub.
type Broadcaster interface {
	Broadcast(topic string, message []byte)
}

// Subscriber bridges redis pub/sub into the websocket hub. It pattern
// subscribes to every comment channel and forwards each message to the
// broadcaster under its bare topic name.
type Subscriber struct {
	client      *redis.Client
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewSubscriber(client *redis.Client, broadcaster Broadcaster, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		client:      client,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Run blocks pumping messages until the context is canceled.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	// wait for the subscription to be confirmed before reporting ready
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	s.logger.Info("listening for comment events", "pattern", ChannelPrefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(msg.Channel, ChannelPrefix)
			s.broadcaster.Broadcast(topic, []byte(msg.Payload))
		}
	}
}
