package admin

import (
	"errors"
	"log"
	"time"

	"lanarena/middleware"
	"lanarena/services"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login authenticates an admin and starts a browser session
// POST /api/admin/login
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := authService.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Printf("⚠️ Failed admin login for %q from %s", req.Username, c.IP())
		return utils.JSONError(c, fiber.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return utils.Fail(c, "log in", err)
	}

	// no Expires: the cookie ends with the browser session
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	log.Printf("🔐 Admin %q logged in", session.Username)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"token":      session.Token,
		"username":   session.Username,
		"expires_at": session.ExpiresAt,
	})
}

// Logout ends the browser session
// POST /api/admin/logout
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

// VerifyToken echoes the current session; the middleware already validated it
// GET /api/admin/verify
func VerifyToken(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"valid":    true,
		"username": username,
		"is_admin": true,
	})
}
