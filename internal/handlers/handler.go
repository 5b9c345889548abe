package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/levelup-api/internal/container"
	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/services"
)

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	UploadDir string
}

type Handler struct {
	svc       *container.Container
	hub       *Hub
	jwtSecret string
	tokenTTL  time.Duration
	uploadDir string
}

func New(svc *container.Container, hub *Hub, opts Options) *Handler {
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	return &Handler{
		svc:       svc,
		hub:       hub,
		jwtSecret: opts.JWTSecret,
		tokenTTL:  opts.TokenTTL,
		uploadDir: opts.UploadDir,
	}
}

// UploadDir is where avatars are stored and served from.
func (h *Handler) UploadDir() string {
	return h.uploadDir
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}

	if status == fiber.StatusInternalServerError {
		logging.WithContext(c.UserContext()).WithError(err).
			WithField("path", c.Path()).
			Error("Unhandled service error")
		return c.Status(status).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"date":   h.svc.Progress.Today(),
	})
}
