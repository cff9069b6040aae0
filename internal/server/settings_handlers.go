package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"quantum/internal/app"
	"quantum/internal/models"
)

// GetActiveTab returns the visible tab; before the first switch it is empty.
func (s *Server) GetActiveTab(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tab": s.coordinator.ActiveTab()})
}

// SwitchTab changes the visible tab.
func (s *Server) SwitchTab(c *fiber.Ctx) error {
	// The param string is only valid for the request; copy before retaining.
	tab := app.Tab(utils.CopyString(c.Params("tab")))
	s.coordinator.SwitchTab(c.UserContext(), tab)
	if s.coordinator.ActiveTab() != tab {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("tab", string(tab)))
	}
	return c.JSON(fiber.Map{"tab": tab})
}

// GetTheme returns the persisted theme preference.
func (s *Server) GetTheme(c *fiber.Ctx) error {
	theme, err := s.coordinator.Theme(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"theme": theme})
}

// ToggleTheme flips the theme between light and dark and persists it.
func (s *Server) ToggleTheme(c *fiber.Ctx) error {
	theme, err := s.coordinator.ToggleTheme(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"theme": theme})
}
