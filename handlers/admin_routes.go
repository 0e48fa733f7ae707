package handlers

import (
	"waste-hunt-api/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers moderation endpoints behind adminAuth.
func SetupAdminRoutes(app *fiber.App, tips *services.TipService, adminAuth fiber.Handler) {
	admin := app.Group("/api/admin", adminAuth)

	admin.Post("/tips/:id/verify", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, "invalid tip id", err)
		}
		if err := tips.Verify(c.UserContext(), id); err != nil {
			return respondError(c, "failed to verify tip", err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	admin.Patch("/tips/:id/impact", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, "invalid tip id", err)
		}
		var in services.ImpactInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, "invalid impact score", err)
		}
		if err := tips.SetImpact(c.UserContext(), id, in); err != nil {
			return respondError(c, "failed to update tip impact", err)
		}
		return c.JSON(fiber.Map{"success": true, "impact_score": in.ImpactScore})
	})
}
