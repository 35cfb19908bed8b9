// middleware/auth.go
package middleware

import (
	"strings"

	"lanarena/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the admin session token for browser requests.
const SessionCookie = "admin_session"

// SessionParser validates admin session tokens.
type SessionParser interface {
	ParseToken(raw string) (*services.SessionClaims, error)
}

var sessions SessionParser

// InitAuth installs the parser used by the admin guards.
func InitAuth(parser SessionParser) {
	sessions = parser
}

// sessionToken looks for the token in the Authorization header, then the
// session cookie, then (for websocket upgrades) the token query parameter.
func sessionToken(c *fiber.Ctx, allowQuery bool) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}

func currentSession(c *fiber.Ctx, allowQuery bool) (*services.SessionClaims, error) {
	if sessions == nil {
		return nil, services.ErrInvalidSession
	}
	return sessions.ParseToken(sessionToken(c, allowQuery))
}

func adminAuth(c *fiber.Ctx, allowQuery bool) error {
	if c.Get("Authorization") == "" && c.Cookies(SessionCookie) == "" && (!allowQuery || c.Query("token") == "") {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing admin session"})
	}

	claims, err := currentSession(c, allowQuery)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired session"})
	}
	if !claims.IsAdmin {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Access denied. Admin privileges required."})
	}

	c.Locals("adminId", claims.Subject)
	c.Locals("username", claims.Username)
	c.Locals("isAdmin", true)
	return c.Next()
}

// AdminAuthMiddleware protects the admin JSON API.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	return adminAuth(c, false)
}

// AdminSocketAuthMiddleware protects admin websockets, which may pass the
// token as ?token= since browsers cannot set headers on an upgrade.
func AdminSocketAuthMiddleware(c *fiber.Ctx) error {
	return adminAuth(c, true)
}

// AdminPageGuard sends visitors without a valid session to the login page.
func AdminPageGuard(c *fiber.Ctx) error {
	path := strings.TrimSuffix(c.Path(), "/")
	if path == "/admin/login" {
		return c.Next()
	}
	claims, err := currentSession(c, false)
	if err != nil || !claims.IsAdmin {
		return c.Redirect("/admin/login", fiber.StatusFound)
	}
	c.Locals("username", claims.Username)
	return c.Next()
}

// LoginPageGuard skips the login page for visitors who already have a session.
func LoginPageGuard(c *fiber.Ctx) error {
	if claims, err := currentSession(c, false); err == nil && claims.IsAdmin {
		return c.Redirect("/admin", fiber.StatusFound)
	}
	return c.Next()
}

func GetUsername(c *fiber.Ctx) (string, error) {
	username := c.Locals("username")
	if username == nil {
		return "", fiber.NewError(401, "Admin not authenticated")
	}
	if name, ok := username.(string); ok {
		return name, nil
	}
	return "", fiber.NewError(401, "Invalid username format")
}
