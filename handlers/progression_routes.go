package handlers

import (
	"waste-hunt-api/models"
	"waste-hunt-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, users *services.UserService, awards *services.AwardService, limiter fiber.Handler) {
	api := app.Group("/api")

	api.Get("/achievements/catalog", func(c *fiber.Ctx) error {
		return c.JSON(models.AchievementCatalog)
	})

	api.Get("/ranks", func(c *fiber.Ctx) error {
		return c.JSON(services.RankTiers)
	})

	api.Post("/users", limiter, func(c *fiber.Ctx) error {
		var in services.RegisterInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, "invalid user", err)
		}
		u, err := users.Register(c.UserContext(), in)
		if err != nil {
			return respondError(c, "failed to create user", err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	})

	api.Get("/users/:userId", func(c *fiber.Ctx) error {
		id, err := paramID(c, "userId")
		if err != nil {
			return respondError(c, "invalid user id", err)
		}
		u, err := users.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, "failed to fetch user", err)
		}
		return c.JSON(u)
	})

	api.Get("/users/:userId/achievements", func(c *fiber.Ctx) error {
		id, err := paramID(c, "userId")
		if err != nil {
			return respondError(c, "invalid user id", err)
		}
		achievements, err := users.Achievements(c.UserContext(), id)
		if err != nil {
			return respondError(c, "failed to fetch user achievements", err)
		}
		return c.JSON(achievements)
	})

	api.Get("/users/:userId/badges", func(c *fiber.Ctx) error {
		id, err := paramID(c, "userId")
		if err != nil {
			return respondError(c, "invalid user id", err)
		}
		badges, err := users.Badges(c.UserContext(), id)
		if err != nil {
			return respondError(c, "failed to fetch user badges", err)
		}
		return c.JSON(badges)
	})

	api.Get("/users/:userId/awards/stream", func(c *fiber.Ctx) error {
		id, err := paramID(c, "userId")
		if err != nil {
			return respondError(c, "invalid user id", err)
		}
		return awards.StreamUserAwardsSSE(c, id)
	})
}
