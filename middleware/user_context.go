package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LocalUserID is the fiber.Locals key holding the acting user's id (uint).
const LocalUserID = "user_id"

// UserContextMiddleware reads the acting user from X-User-ID, set by the
// gateway in front of the API. Without the header the request acts as
// defaultUserID; zero leaves it anonymous.
func UserContextMiddleware(defaultUserID uint, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get("X-User-ID"))
		if raw == "" {
			if defaultUserID != 0 {
				c.Locals(LocalUserID, defaultUserID)
			}
			return c.Next()
		}

		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil || id == 0 {
			log.WithField("path", c.Path()).Warnf("❌ [USER_CTX] invalid X-User-ID %q", raw)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid X-User-ID",
				"cause": "X-User-ID must be a positive integer",
			})
		}

		c.Locals(LocalUserID, uint(id))
		return c.Next()
	}
}

// UserID returns the acting user set by UserContextMiddleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserID(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID",
			})
		}
		return c.Next()
	}
}
