package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/middleware"
)

// GetActivity returns the paginated activity feed of the current user.
func (h *Handler) GetActivity(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	activities, total, err := h.svc.Activity.List(c.UserContext(), middleware.GetUserID(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      total,
		"page":       page,
	})
}
