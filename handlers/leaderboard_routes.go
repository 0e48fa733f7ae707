package handlers

import (
	"waste-hunt-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboard *services.LeaderboardService) {
	api := app.Group("/api/leaderboard")

	api.Get("/", func(c *fiber.Ctx) error {
		users, err := leaderboard.Top(c.UserContext(), c.QueryInt("limit", services.DefaultLeaderboardLimit))
		if err != nil {
			return respondError(c, "failed to fetch leaderboard", err)
		}
		return c.JSON(users)
	})

	api.Get("/weekly", func(c *fiber.Ctx) error {
		users, err := leaderboard.Weekly(c.UserContext(), c.QueryInt("limit", services.DefaultLeaderboardLimit))
		if err != nil {
			return respondError(c, "failed to fetch weekly leaderboard", err)
		}
		return c.JSON(users)
	})

	api.Get("/detailed", func(c *fiber.Ctx) error {
		entries, err := leaderboard.Detailed(c.UserContext())
		if err != nil {
			return respondError(c, "failed to fetch leaderboard data", err)
		}
		return c.JSON(entries)
	})
}
