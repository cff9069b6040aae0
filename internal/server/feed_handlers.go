package server

import (
	"github.com/gofiber/fiber/v2"

	"quantum/internal/models"
)

// CreatePostRequest represents the body for creating a post.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CommentRequest represents the body for adding a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// GetFeed returns the feed decorated for the current viewer, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	items, err := s.coordinator.Feed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// CreatePost publishes a post by the current user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.coordinator.PublishPost(c.UserContext(), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ToggleLike flips the viewer's like on a post. Unknown IDs are no-ops.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	if err := s.coordinator.ToggleLike(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddComment appends a comment to a post. Empty content and unknown IDs are
// no-ops.
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.coordinator.AddComment(c.UserContext(), c.Params("id"), req.Content); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost removes the viewer's own post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.coordinator.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
