package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/models"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.svc.Users.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return h.sendAuth(c, fiber.StatusCreated, user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.svc.Users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return h.sendAuth(c, fiber.StatusOK, user)
}

func (h *Handler) sendAuth(c *fiber.Ctx, status int, user *models.User) error {
	token, err := middleware.GenerateToken(h.jwtSecret, h.tokenTTL, user)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}
