package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// SessionSource exposes the in-memory login state of the device session.
type SessionSource interface {
	IsLoggedIn() bool
	CurrentUser() string
}

// SessionRequired is a Fiber middleware that rejects requests unless a user is logged in.
func SessionRequired(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := sessions.CurrentUser()
		if !sessions.IsLoggedIn() || username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Login required",
			})
		}

		c.Locals("username", username)
		return c.Next()
	}
}
