package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// comment feeds are public data; origin checks stay open
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades the HTTP connection and starts the read/write pumps.
// No auth: the feed only carries comments that are readable anonymously
// over the REST API anyway.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade to websocket"})
			return
		}

		client := NewClient(uuid.New().String(), conn, hub)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
