// handlers/register.go - Public registration form
package handlers

import (
	"fmt"
	"io"
	"log"

	"lanarena/services"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// RedirectAfterSeconds is how long the success screen stays before going home.
const RedirectAfterSeconds = 6

func parseRegistrationForm(c *fiber.Ctx) services.RegistrationForm {
	form := services.RegistrationForm{
		TeamName:     c.FormValue("team_name"),
		College:      c.FormValue("college"),
		CaptainName:  c.FormValue("captain_name"),
		CaptainUID:   c.FormValue("captain_uid"),
		CaptainEmail: c.FormValue("captain_email"),
		CaptainPhone: c.FormValue("captain_phone"),
		AcceptTerms:  services.ParseCheckbox(c.FormValue("terms")),
	}
	// players 2..5 fill the optional slots
	for i := range form.Players {
		n := i + 2
		form.Players[i] = services.Player{
			Name: c.FormValue(fmt.Sprintf("player%d_name", n)),
			UID:  c.FormValue(fmt.Sprintf("player%d_uid", n)),
		}
	}
	return form
}

// SubmitRegistration stores a team registration with its college ID
// POST /api/registrations
func SubmitRegistration(c *fiber.Ctx) error {
	form := parseRegistrationForm(c)

	var (
		upload *services.Upload
		body   io.Reader
	)
	if fh, err := c.FormFile("college_id"); err == nil && fh != nil && fh.Size > 0 {
		upload = &services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
		file, err := fh.Open()
		if err != nil {
			log.Printf("❌ Failed to open college ID upload: %v", err)
			return utils.JSONError(c, fiber.StatusBadRequest, "Could not read the college ID file")
		}
		defer file.Close()
		body = file
	}

	reg, err := registrationService.Submit(c.UserContext(), form, upload, body)
	if err != nil {
		return utils.Fail(c, "submit registration", err)
	}

	log.Printf("✅ Registration received from %q (%s)", reg.TeamName, reg.College)
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{
		"registration":           reg.View(),
		"message":                "Registration Successful!",
		"redirect":               "/",
		"redirect_after_seconds": RedirectAfterSeconds,
	})
}
