package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/models"
)

func (h *Handler) GetFriends(c *fiber.Ctx) error {
	friends, err := h.svc.Friends.List(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"friends": friends})
}

func (h *Handler) AddFriend(c *fiber.Ctx) error {
	var req models.AddFriendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	me, err := h.svc.Users.GetByID(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	friend, err := h.svc.Friends.Add(c.UserContext(), me, req.FriendUsername)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(friend)
}

func (h *Handler) RemoveFriend(c *fiber.Ctx) error {
	if err := h.svc.Friends.Remove(c.UserContext(), middleware.GetUserID(c), c.Params("friendUsername")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
