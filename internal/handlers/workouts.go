package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/models"
)

func (h *Handler) GetWorkouts(c *fiber.Ctx) error {
	entries, err := h.svc.Workouts.ListRecent(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workouts": entries})
}

// RecordWorkout ignores any xpGained sent by the client.
func (h *Handler) RecordWorkout(c *fiber.Ctx) error {
	var req models.RecordWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Date == "" {
		req.Date = h.svc.Progress.Today()
	}

	entry, state, err := h.svc.Workouts.RecordWorkout(c.UserContext(), middleware.GetUserID(c), req.Date, req.Name, req.Duration)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"workout":     entry,
		"progression": state,
	})
}
