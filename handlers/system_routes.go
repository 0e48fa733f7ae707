package handlers

import (
	"waste-hunt-api/metrics"

	"github.com/gofiber/fiber/v2"
)

func SetupSystemRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())
}
