package handler

import (
	"go-pos-kardex/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// RegisterSale materializes a POS transaction and returns the receipt.
// POST /api/v1/sales/registrar {items:[{id_producto,cantidad,precio}], total}
func (h *SaleHandler) RegisterSale(c *fiber.Ctx) error {
	var req service.RegisterSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	receipt, err := h.service.RegisterSale(&req, actorFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Venta registrada exitosamente",
		"ticket":  receipt,
	})
}

// GetSales lists sales with their line items, newest first.
// GET /api/v1/sales
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetSales()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(sales)
}

// GetSale looks a sale up by folio, for receipt re-prints.
// GET /api/v1/sales/:folio
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.service.GetSale(c.Params("folio"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(sale)
}
