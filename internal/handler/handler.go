package handler

import (
	"errors"

	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actorFromCtx rebuilds the acting identity stored by RequireAuth.
func actorFromCtx(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals("user_id").(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			actor.ID = parsed
		}
	}
	if email, ok := c.Locals("user_email").(string); ok {
		actor.Email = email
	}
	if name, ok := c.Locals("user_name").(string); ok {
		actor.Name = name
	}
	if role, ok := c.Locals("user_role").(model.Role); ok {
		actor.Role = role
	}
	return actor
}

// respondServiceError maps the service error taxonomy onto HTTP codes.
// Anything not in the taxonomy is an infrastructure failure and stays a
// 500 without leaking its message.
func respondServiceError(c *fiber.Ctx, err error) error {
	var insufficient *service.InsufficientStockError
	var validation *service.ValidationError

	switch {
	case errors.As(err, &insufficient):
		return c.Status(400).JSON(fiber.Map{
			"error":           "Stock insuficiente.",
			"sku":             insufficient.SKU,
			"stockDisponible": insufficient.Available,
		})
	case errors.As(err, &validation),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrSKUExists),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrEmailTaken):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrSaleNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrFolioCollision):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive):
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
