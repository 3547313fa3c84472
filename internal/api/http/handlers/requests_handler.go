package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/api/dto"
	"github.com/spec-kit/ecoeats/internal/domain"
	"github.com/spec-kit/ecoeats/internal/service"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// RequestsHandler exposes the support request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requestService}
}

// Create handles POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.SupportRequestCreate
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.requests.Submit(c.UserContext(), p.User.ID,
		domain.RequestType(req.Type), domain.Urgency(req.Urgency), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSupportRequestResponse(request)})
}

// ListMine handles GET /requests.
func (h *RequestsHandler) ListMine(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	requests, err := h.requests.ListForBeneficiary(c.UserContext(), p.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSupportRequestList(requests)})
}

// GetMine handles GET /requests/:id.
func (h *RequestsHandler) GetMine(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	request, err := h.requests.GetForBeneficiary(c.UserContext(), p.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSupportRequestResponse(request)})
}

// Eligibility handles GET /requests/eligibility.
func (h *RequestsHandler) Eligibility(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	eligibility, err := h.requests.EligibilityForFoodPack(c.UserContext(), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEligibilityResponse(eligibility)})
}

// ListPending handles GET /admin/requests.
func (h *RequestsHandler) ListPending(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	requests, err := h.requests.ListPending(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSupportRequestList(requests)})
}

// Review handles POST /admin/requests/:id/review.
func (h *RequestsHandler) Review(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.SupportRequestReview
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.requests.Review(c.UserContext(), c.Params("id"),
		domain.RequestStatus(req.Decision), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSupportRequestResponse(request)})
}
