package websocket

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts /ws/chat. `?monitor=true` subscribes to the live answered-chat feed.
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(func(c *websocket.Conn) {
		ServeWs(h, c, c.Query("monitor") == "true")
	}))
}

// ServeWs runs one connection until the peer disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, monitor bool) {
	client := &Client{Hub: hub, Conn: c, SessionID: uuid.New(), Monitor: monitor, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump(context.Background())
}
