package handlers

import (
	"waste-hunt-api/middleware"
	"waste-hunt-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFeedRoutes(app *fiber.App, feed *services.FeedService, limiter fiber.Handler) {
	api := app.Group("/api")

	api.Get("/waste", func(c *fiber.Ctx) error {
		reports, err := feed.ListReports(c.UserContext())
		if err != nil {
			return respondError(c, "failed to fetch waste items", err)
		}
		return c.JSON(reports)
	})

	api.Post("/waste/:id/share", limiter, func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, "invalid waste item id", err)
		}
		if err := feed.Share(c.UserContext(), id); err != nil {
			return respondError(c, "failed to share waste item", err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := feed.Stats(c.UserContext())
		if err != nil {
			return respondError(c, "failed to fetch stats", err)
		}
		return c.JSON(stats)
	})

	api.Get("/comments", func(c *fiber.Ctx) error {
		comments, err := feed.ListComments(c.UserContext())
		if err != nil {
			return respondError(c, "failed to fetch comments", err)
		}
		return c.JSON(comments)
	})

	api.Post("/comments", middleware.RequireUser(), limiter, func(c *fiber.Ctx) error {
		userID, _ := middleware.UserID(c)
		var in services.CommentInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, "invalid comment", err)
		}
		comment, err := feed.AddComment(c.UserContext(), userID, in)
		if err != nil {
			return respondError(c, "failed to add comment", err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})
}
