package handler

import (
	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MovementHandler struct {
	service service.StockService
}

func NewMovementHandler(s service.StockService) *MovementHandler {
	return &MovementHandler{service: s}
}

// StockIn registers an inbound stock adjustment.
// POST /api/v1/movements/entrada {SKU, Cantidad}
func (h *MovementHandler) StockIn(c *fiber.Ctx) error {
	return h.adjust(c, model.KindStockIn, "Entrada registrada exitosamente.")
}

// StockOut registers an outbound stock adjustment.
// POST /api/v1/movements/salida {SKU, Cantidad}
func (h *MovementHandler) StockOut(c *fiber.Ctx) error {
	return h.adjust(c, model.KindStockOut, "Salida registrada exitosamente.")
}

func (h *MovementHandler) adjust(c *fiber.Ctx, kind model.MovementKind, message string) error {
	var req service.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, lowStock, err := h.service.AdjustStock(&req, kind, actorFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message":             message,
		"productoActualizado": product,
		"bajoStock":           lowStock,
	})
}

// GetMovements lists Kardex entries, newest first. Operators see their
// own entries, superadmins see everything.
// GET /api/v1/movements
func (h *MovementHandler) GetMovements(c *fiber.Ctx) error {
	movements, err := h.service.GetMovements(actorFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(movements)
}
