package handlers

import (
	"mime/multipart"

	"waste-hunt-api/middleware"
	"waste-hunt-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTipRoutes(app *fiber.App, tips *services.TipService, limiter fiber.Handler) {
	api := app.Group("/api")

	// Accepts JSON, url-encoded forms, or multipart with an optional
	// "evidence" file.
	api.Post("/tips", middleware.RequireUser(), limiter, func(c *fiber.Ctx) error {
		userID, _ := middleware.UserID(c)

		var in services.SubmitTipInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, "invalid tip", err)
		}

		var evidence *multipart.FileHeader
		if form, err := c.MultipartForm(); err == nil {
			if files := form.File["evidence"]; len(files) > 0 {
				evidence = files[0]
			}
		}

		res, err := tips.Submit(c.UserContext(), userID, in, evidence)
		if err != nil && res != nil {
			// Tip stored, rewards only partly applied.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":      "failed to apply tip rewards",
				"cause":      err.Error(),
				"submission": res,
			})
		}
		if err != nil {
			return respondError(c, "failed to submit tip", err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	api.Get("/tips", func(c *fiber.Ctx) error {
		list, err := tips.List(c.UserContext())
		if err != nil {
			return respondError(c, "failed to fetch tips", err)
		}
		return c.JSON(list)
	})
}
