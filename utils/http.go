// utils/http.go - JSON response helpers for fiber handlers
package utils

import (
	"errors"
	"log"

	"lanarena/services"

	"github.com/gofiber/fiber/v2"
)

// JSONError sends {"success": false, "error": message}
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess merges data into a {"success": true} body.
func JSONSuccess(c *fiber.Ctx, status int, data fiber.Map) error {
	response := fiber.Map{"success": true}
	for k, v := range data {
		response[k] = v
	}
	return c.Status(status).JSON(response)
}

// JSONFieldErrors reports form validation failures field by field.
func JSONFieldErrors(c *fiber.Ctx, errs services.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Please fix the errors",
		"fields":  errs,
	})
}

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrRegistrationNotFound, fiber.StatusNotFound},
	{services.ErrNotificationNotFound, fiber.StatusNotFound},
	{services.ErrNoCollegeID, fiber.StatusNotFound},
	{services.ErrInvalidStatus, fiber.StatusBadRequest},
	{services.ErrUnsupportedUpload, fiber.StatusBadRequest},
	{services.ErrInvalidTransition, fiber.StatusConflict},
	{services.ErrAlreadySent, fiber.StatusConflict},
	{services.ErrPassUnavailable, fiber.StatusConflict},
	{services.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrInvalidSession, fiber.StatusUnauthorized},
	{services.ErrSheetsDisabled, fiber.StatusServiceUnavailable},
}

// Fail renders a service error. Known errors get their status and message;
// anything else is logged and handed to the app error handler as a 500.
func Fail(c *fiber.Ctx, action string, err error) error {
	if fe, ok := services.AsFieldErrors(err); ok {
		return JSONFieldErrors(c, fe)
	}
	var tooLarge *services.UploadTooLargeError
	if errors.As(err, &tooLarge) {
		return JSONError(c, fiber.StatusRequestEntityTooLarge, tooLarge.Error())
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return JSONError(c, e.status, e.err.Error())
		}
	}
	log.Printf("❌ %s: %v", action, err)
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to "+action+": "+err.Error())
}
