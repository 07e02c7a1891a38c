package websocket

import (
	"encoding/json"
	"log/slog"
)

// Wire protocol between the hub and browser/CLI clients.

// ClientMessage is what a connected client sends: subscribe to or leave a
// comment topic like "chapter.<id>" or "novel.<id>".
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Topic  string `json:"topic"`
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ServerMessage wraps a pushed comment with the topic it belongs to so a
// client watching several threads can route it.
type ServerMessage struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

func NewServerMessage(topic string, data []byte) *ServerMessage {
	return &ServerMessage{Topic: topic, Data: json.RawMessage(data)}
}

func (m *ServerMessage) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("failed to marshal server message", "topic", m.Topic, "error", err)
		return nil, err
	}
	return data, nil
}

func ClientMessageFromJSON(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
