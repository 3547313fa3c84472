package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/api/dto"
	"github.com/spec-kit/ecoeats/internal/service"
)

// ImpactHandler exposes the public impact summary.
type ImpactHandler struct {
	impact *service.ImpactService
}

// NewImpactHandler constructs handler.
func NewImpactHandler(impactService *service.ImpactService) *ImpactHandler {
	return &ImpactHandler{impact: impactService}
}

// Summary handles GET /impact/summary.
func (h *ImpactHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.impact.Summarize(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewImpactSummaryResponse(summary)})
}
