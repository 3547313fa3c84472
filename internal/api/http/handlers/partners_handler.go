package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/api/dto"
	"github.com/spec-kit/ecoeats/internal/service"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// PartnersHandler exposes partner onboarding and staff management.
type PartnersHandler struct {
	partners *service.PartnerService
}

// NewPartnersHandler constructs handler.
func NewPartnersHandler(partnerService *service.PartnerService) *PartnersHandler {
	return &PartnersHandler{partners: partnerService}
}

// Register handles POST /auth/partners/register.
func (h *PartnersHandler) Register(c *fiber.Ctx) error {
	var req dto.PartnerRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	partner, owner, err := h.partners.Register(c.UserContext(), service.RegisterPartnerInput{
		Name:          req.Name,
		Address:       req.Address,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"partner": dto.NewPartnerResponse(partner),
			"owner":   dto.NewUserResponse(owner),
		},
	})
}

// AddStaff handles POST /partner/staff.
func (h *PartnersHandler) AddStaff(c *fiber.Ctx) error {
	partnerID, _, err := partnerScope(c)
	if err != nil {
		return err
	}

	var req dto.PartnerStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, err := h.partners.AddStaff(c.UserContext(), partnerID, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(staff)})
}

// Me handles GET /partner/me.
func (h *PartnersHandler) Me(c *fiber.Ctx) error {
	partnerID, _, err := partnerScope(c)
	if err != nil {
		return err
	}
	partner, err := h.partners.Get(c.UserContext(), partnerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPartnerResponse(partner)})
}
