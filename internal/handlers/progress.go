package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/models"
)

func (h *Handler) GetProgress(c *fiber.Ctx) error {
	records, err := h.svc.Progress.TodayProgress(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"date":            h.svc.Progress.Today(),
		"workoutProgress": records,
	})
}

func (h *Handler) InitProgress(c *fiber.Ctx) error {
	var req models.InitProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.WorkoutProgress) == 0 {
		return badRequest(c, "workoutProgress must list at least one goal")
	}

	goalIDs := make([]uuid.UUID, 0, len(req.WorkoutProgress))
	for _, item := range req.WorkoutProgress {
		id, err := uuid.Parse(item.GoalID)
		if err != nil {
			return badRequest(c, "Invalid goal ID")
		}
		goalIDs = append(goalIDs, id)
	}

	records, err := h.svc.Progress.InitializeProgress(c.UserContext(), middleware.GetUserID(c), goalIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"workoutProgress": records})
}

func (h *Handler) UpdateProgress(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("progressId"))
	if err != nil {
		return badRequest(c, "Invalid progress ID")
	}

	var req models.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Completed == nil || req.IsCompleted == nil {
		return badRequest(c, "completed and isCompleted are required")
	}

	out, err := h.svc.Progress.UpdateProgress(c.UserContext(), middleware.GetUserID(c), recordID, *req.Completed, *req.IsCompleted)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *Handler) ResetProgress(c *fiber.Ctx) error {
	var req models.ResetProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var goalID *uuid.UUID
	if req.GoalID != "" {
		id, err := uuid.Parse(req.GoalID)
		if err != nil {
			return badRequest(c, "Invalid goal ID")
		}
		goalID = &id
	}

	count, err := h.svc.Progress.ResetProgress(c.UserContext(), middleware.GetUserID(c), req.Date, goalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}
