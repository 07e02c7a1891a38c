package client

// ws_stream.go backs the comment section engine's live channel with the
// server's websocket feed.

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"novelhub/internal/commentsync"
)

type wsClientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

type wsServerMessage struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// WSStream dials one websocket connection per subscription. One topic per
// reading session is the normal case; pooling is not worth the bookkeeping.
type WSStream struct {
	wsURL string
}

func NewWSStream(host string) *WSStream {
	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	return &WSStream{wsURL: u.String()}
}

// Subscribe connects, subscribes to the topic and pumps matching payloads
// into the returned channel until teardown or context cancellation.
func (s *WSStream) Subscribe(ctx context.Context, topic string) (<-chan []byte, func(), error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return nil, nil, err
	}

	if err := conn.WriteJSON(wsClientMessage{Action: "subscribe", Topic: topic}); err != nil {
		conn.Close()
		return nil, nil, err
	}

	ch := make(chan []byte, 16)
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			conn.WriteJSON(wsClientMessage{Action: "unsubscribe", Topic: topic})
			conn.Close()
		})
	}

	go func() {
		defer close(ch)
		defer cancel()
		for {
			var msg wsServerMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Topic != topic {
				continue
			}
			select {
			case ch <- []byte(msg.Data):
			case <-ctx.Done():
				return
			default:
				slog.Warn("dropping push, consumer not keeping up", "topic", topic)
			}
		}
	}()

	return ch, cancel, nil
}

var _ commentsync.Stream = (*WSStream)(nil)
