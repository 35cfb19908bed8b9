package handlers

import (
	"errors"
	"log"
	"net/url"

	"lanarena/storage"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// ServeSignedFile streams a stored object to holders of a valid signed link
// GET /files/*?token=
func ServeSignedFile(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid file path")
	}
	if signer == nil || signer.Verify(key, c.Query("token")) != nil {
		return utils.JSONError(c, fiber.StatusForbidden, "This link is invalid or has expired")
	}

	rc, contentType, err := store.Get(c.UserContext(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return utils.JSONError(c, fiber.StatusNotFound, "File not found")
	}
	if err != nil {
		log.Printf("❌ Failed to read %s: %v", key, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to read file")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.SendStream(rc)
}
