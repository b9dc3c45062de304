package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a dashboard connection to its workshop room.
func ServeWs(hub *Hub, c *websocket.Conn, workshopID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, WorkshopID: workshopID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
