package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdminAuthMiddleware checks "Authorization: Bearer <token>" against the
// configured admin token. An empty token disables the admin routes.
func AdminAuthMiddleware(token string, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "admin API disabled",
				"cause": "ADMIN_TOKEN is not set",
			})
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.WithField("path", c.Path()).Warn("🚫 [ADMIN_AUTH] missing Authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "admin token missing",
			})
		}

		got := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.WithField("path", c.Path()).Warn("❌ [ADMIN_AUTH] invalid admin token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid admin token",
			})
		}
		return c.Next()
	}
}
