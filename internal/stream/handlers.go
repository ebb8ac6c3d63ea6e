package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub, gate fiber.Handler) {
	r.Get("/ws", gate, websocket.New(func(c *websocket.Conn) {
		accountID, _ := c.Locals("user_id").(string)
		if accountID == "" {
			return
		}

		client := hub.Register(accountID)

		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		// Closing Send here lets the writer goroutine drain and exit.
		hub.Unregister(client)
	}))
}
