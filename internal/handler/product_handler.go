package handler

import (
	"go-pos-kardex/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.StockService
}

func NewProductHandler(s service.StockService) *ProductHandler {
	return &ProductHandler{service: s}
}

// CreateProduct creates a product, reviving a retired SKU if one exists.
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(&req, actorFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct edits catalog fields (stock changes go through movements).
// PUT /api/v1/products/:sku
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.UpdateProduct(c.Params("sku"), &req, actorFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DeleteProduct retires a product (soft delete, superadmin only).
// DELETE /api/v1/products/:sku
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("sku"), actorFromCtx(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(204)
}

// GetProducts lists active products.
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProducts()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(products)
}

// GetProduct fetches one active product by SKU.
// GET /api/v1/products/:sku
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySKU(c.Params("sku"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(product)
}

// CreateCategory adds a catalog category.
// POST /api/v1/categories
func (h *ProductHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.service.CreateCategory(&req, actorFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

// GetCategories lists categories.
// GET /api/v1/categories
func (h *ProductHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}
