package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"quantum/internal/models"
)

// SendMessageRequest represents the body for sending a chat message.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// GetChats returns the chat list summarized for the current viewer.
func (s *Server) GetChats(c *fiber.Ctx) error {
	items, err := s.coordinator.ChatList(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// OpenChat selects a chat for messaging.
func (s *Server) OpenChat(c *fiber.Ctx) error {
	// The param string is only valid for the request; copy before retaining.
	chatID := utils.CopyString(c.Params("id"))
	chat, ok := s.coordinator.OpenChat(c.UserContext(), chatID)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("chat", chatID))
	}
	return c.JSON(chat)
}

// GetActiveChat returns the currently selected chat.
func (s *Server) GetActiveChat(c *fiber.Ctx) error {
	chat, ok := s.conversations.ActiveChat()
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("chat", "active"))
	}
	return c.JSON(chat)
}

// SendMessage appends a message from the current user to the active chat.
// Without a session or active chat nothing is sent and 204 is returned.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.coordinator.SendMessage(c.UserContext(), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	if msg == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
