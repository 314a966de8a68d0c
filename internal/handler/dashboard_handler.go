package handler

import (
	"go-pos-kardex/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetMetrics returns the overview aggregates.
// GET /api/v1/dashboard/metrics
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	metrics, err := h.service.GetMetrics()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard metrics"})
	}
	return c.JSON(metrics)
}
