package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/models"
)

// GetUser returns the full profile to its owner and a public summary to
// everyone else.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.svc.Users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	if user.ID == middleware.GetUserID(c) {
		return c.JSON(user)
	}
	return c.JSON(fiber.Map{
		"username":    user.Username,
		"bio":         user.Bio,
		"theme":       user.Theme,
		"progression": user.Progression,
		"stats":       user.Stats,
	})
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.svc.Users.UpdateProfile(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) SetTheme(c *fiber.Ctx) error {
	var req struct {
		Theme models.Theme `json:"theme"`
	}
	if err := c.BodyParser(&req); err != nil || req.Theme == "" {
		return badRequest(c, "Theme is required")
	}

	user, err := h.svc.Users.SetTheme(c.UserContext(), middleware.GetUserID(c), req.Theme)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"theme": user.Theme})
}

// SearchUsers reads ?q=, falling back to ?username= for older clients.
func (h *Handler) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		query = c.Query("username")
	}

	results, err := h.svc.Users.Search(c.UserContext(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": results})
}

// Catalog lists the workout types and themes a client can choose from.
func (h *Handler) Catalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"workoutTypes": models.WorkoutCatalog(),
		"themes":       models.AllThemes,
	})
}
