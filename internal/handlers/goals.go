package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/models"
)

func (h *Handler) GetGoals(c *fiber.Ctx) error {
	goals, err := h.svc.Goals.List(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workoutGoals": goals})
}

// ReplaceGoals swaps the whole goal set. Today's progress records keep the
// totals they were created with.
func (h *Handler) ReplaceGoals(c *fiber.Ctx) error {
	var req models.ReplaceGoalsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.WorkoutGoals == nil {
		return badRequest(c, "workoutGoals must be an array")
	}

	goals, err := h.svc.Goals.Replace(c.UserContext(), middleware.GetUserID(c), *req.WorkoutGoals)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workoutGoals": goals})
}
