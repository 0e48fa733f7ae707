package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"waste-hunt-api/services"
	"waste-hunt-api/store"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service and store errors onto HTTP statuses using the
// {"error", "cause"} body shape.
func respondError(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", services.ErrValidation, name)
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	return nil
}
