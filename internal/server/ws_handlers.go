package server

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// errorPayload encodes an error as a JSON object so the message stays valid
// JSON whatever characters the error carries.
func errorPayload(err error) []byte {
	payload, merr := json.Marshal(fiber.Map{"error": err.Error()})
	if merr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return payload
}

// WebSocketEventsHandler streams toast and render events to connected clients.
func (s *Server) WebSocketEventsHandler() fiber.Handler {
	if s.hub == nil {
		return func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusServiceUnavailable, "event stream unavailable")
		}
	}

	return websocket.New(func(conn *websocket.Conn) {
		if err := s.hub.Register(conn); err != nil {
			log.Printf("WebSocket events: failed to register: %v", err)
			_ = conn.WriteMessage(websocket.TextMessage, errorPayload(err))
			_ = conn.Close()
			return
		}
		defer s.hub.Unregister(conn)

		// Clients only listen; the read loop exists to detect disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
