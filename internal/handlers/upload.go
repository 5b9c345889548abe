package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/middleware"
)

const maxAvatarBytes = 5 * 1024 * 1024

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadAvatar stores a profile picture under the upload dir and points the
// user's avatarUrl at it.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "No image file provided")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return badRequest(c, "Only jpg, png, and webp images are allowed")
	}
	if file.Size > maxAvatarBytes {
		return badRequest(c, "Image must be under 5MB")
	}

	log := logging.WithContext(c.UserContext())
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.WithError(err).Error("Failed to create uploads directory")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save image",
		})
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		log.WithError(err).Error("Failed to save avatar")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save image",
		})
	}

	user, err := h.svc.Users.SetAvatar(c.UserContext(), middleware.GetUserID(c), "/uploads/"+filename)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"avatarUrl": user.AvatarURL})
}
