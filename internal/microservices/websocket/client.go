package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const ( // ping/pong heartbeat to keep the connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // no pong within this window = dead connection
	PingPeriod     = (PongWait * 9) / 10 // ping a bit before the pong deadline
	MaxMessageSize = 512                 // subscribe/unsubscribe frames are tiny
)

// Client is one upgraded connection. Reads and writes each run on their own
// goroutine; everything else talks to the client through the send channel.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, 256),
		hub:  hub,
	}
}

// ReadPump consumes subscribe/unsubscribe frames until the peer goes away,
// then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := ClientMessageFromJSON(data)
		if err != nil || msg.Topic == "" {
			continue
		}

		switch msg.Action {
		case ActionSubscribe:
			c.hub.Subscribe(c, msg.Topic)
		case ActionUnsubscribe:
			c.hub.Unsubscribe(c, msg.Topic)
		}
	}
}

// WritePump drains the send channel onto the wire and keeps the heartbeat
// going. It exits when the hub closes the send channel.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
