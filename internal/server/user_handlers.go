package server

import (
	"github.com/gofiber/fiber/v2"

	"quantum/internal/models"
)

// GetCurrentUser returns the logged-in user, or 404 when no session exists.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, ok := s.identity.Current()
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("session", "current"))
	}
	return c.JSON(user)
}

// Login establishes a session for the given user record.
func (s *Server) Login(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if user.Username == "" || user.DisplayName == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and display name are required"))
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := s.identity.Login(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Logout clears the session.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.coordinator.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// UpdateProfile applies a profile patch to the current user.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var patch models.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.coordinator.SaveProfile(c.UserContext(), patch); err != nil {
		return respondError(c, err)
	}
	user, _ := s.identity.Current()
	return c.JSON(user)
}

// SearchUsers returns directory entries matching the q parameter; without q
// it returns the full directory.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users := s.identity.SearchUsers(c.Query("q"))
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// GetUserProfile returns a user with their posts. Unknown users still get a
// profile view with placeholder display values.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	view, err := s.coordinator.Profile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
