package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/levelup-api/internal/middleware"
)

func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	notifications, err := h.svc.Notifications.List(c.UserContext(), middleware.GetUserID(c), c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.svc.Notifications.MarkRead(c.UserContext(), middleware.GetUserID(c), notifID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.svc.Notifications.MarkAllRead(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": n})
}

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Token is required")
	}

	if err := h.svc.Notifications.RegisterDeviceToken(c.UserContext(), middleware.GetUserID(c), req.Token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
