// handlers/admin/registrations.go - Registration management
package admin

import (
	"bytes"
	"log"
	"strings"

	"lanarena/models"
	"lanarena/services"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

func registrationFilter(c *fiber.Ctx) services.RegistrationFilter {
	return services.RegistrationFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}
}

func registrationViews(regs []models.Registration) []models.RegistrationView {
	views := make([]models.RegistrationView, 0, len(regs))
	for _, r := range regs {
		views = append(views, r.View())
	}
	return views
}

// GetRegistrations lists registrations with search and status filters
// GET /api/admin/registrations?search=&status=
func GetRegistrations(c *fiber.Ctx) error {
	ctx := c.UserContext()
	regs, err := registrationService.List(ctx, registrationFilter(c))
	if err != nil {
		return utils.Fail(c, "list registrations", err)
	}
	counts, err := registrationService.Counts(ctx)
	if err != nil {
		return utils.Fail(c, "count registrations", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"registrations": registrationViews(regs),
		"total":         len(regs),
		"counts":        counts,
	})
}

// GetRegistration returns one registration
// GET /api/admin/registrations/:id
func GetRegistration(c *fiber.Ctx) error {
	reg, err := registrationService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "load registration", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"registration": reg.View()})
}

// CreateRegistration adds a registration typed in by an admin
// POST /api/admin/registrations
func CreateRegistration(c *fiber.Ctx) error {
	var in services.AdminRegistrationInput
	if err := c.BodyParser(&in); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	reg, err := registrationService.Create(c.UserContext(), in)
	if err != nil {
		return utils.Fail(c, "create registration", err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"registration": reg.View()})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateRegistrationStatus verifies or rejects a pending registration
// PATCH /api/admin/registrations/:id/status
func UpdateRegistrationStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	next := models.RegistrationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	reg, err := registrationService.UpdateStatus(c.UserContext(), c.Params("id"), next)
	if err != nil {
		return utils.Fail(c, "update registration status", err)
	}
	log.Printf("✅ Registration %s marked %s", reg.ID, reg.Status)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"registration": reg.View()})
}

// DeleteRegistration removes a registration and its college ID
// DELETE /api/admin/registrations/:id
func DeleteRegistration(c *fiber.Ctx) error {
	if err := registrationService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.Fail(c, "delete registration", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Registration deleted"})
}

// GetCollegeIDLink returns a short-lived link to the uploaded college ID
// GET /api/admin/registrations/:id/college-id
func GetCollegeIDLink(c *fiber.Ctx) error {
	url, expiresAt, err := registrationService.CollegeIDLink(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "sign college ID link", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"url": url, "expires_at": expiresAt})
}

// ExportRegistrationsCSV downloads the filtered registrations
// GET /api/admin/registrations/export.csv?search=&status=
func ExportRegistrationsCSV(c *fiber.Ctx) error {
	regs, err := registrationService.List(c.UserContext(), registrationFilter(c))
	if err != nil {
		return utils.Fail(c, "export registrations", err)
	}
	var buf bytes.Buffer
	if err := utils.WriteCSV(&buf, services.ExportRows(regs)); err != nil {
		return utils.Fail(c, "write CSV", err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("registrations.csv")
	return c.Send(buf.Bytes())
}

// ExportRegistrationsToSheets writes the filtered registrations to Google Sheets
// POST /api/admin/registrations/export/sheets?search=&status=
func ExportRegistrationsToSheets(c *fiber.Ctx) error {
	rows, err := registrationService.ExportToSheets(c.UserContext(), sheetsExporter, registrationFilter(c))
	if err != nil {
		return utils.Fail(c, "export to sheets", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"sheet": services.SheetRegistrations,
		"rows":  rows,
	})
}

// GetCheckInPass renders the QR pass of a verified team
// GET /api/admin/registrations/:id/pass.png
func GetCheckInPass(c *fiber.Ctx) error {
	png, _, err := registrationService.CheckInPass(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "render check-in pass", err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
