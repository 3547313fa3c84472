package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/api/dto"
	"github.com/spec-kit/ecoeats/internal/service"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// SurplusHandler exposes surplus listing and claim endpoints.
type SurplusHandler struct {
	surplus *service.SurplusService
}

// NewSurplusHandler constructs handler.
func NewSurplusHandler(surplusService *service.SurplusService) *SurplusHandler {
	return &SurplusHandler{surplus: surplusService}
}

// ListAvailable handles GET /surplus.
func (h *SurplusHandler) ListAvailable(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	listings, err := h.surplus.ListAvailable(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAvailableListingList(listings)})
}

// Create handles POST /surplus.
func (h *SurplusHandler) Create(c *fiber.Ctx) error {
	partnerID, actorID, err := partnerScope(c)
	if err != nil {
		return err
	}

	var req dto.ListingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	listing, err := h.surplus.PostListing(c.UserContext(), service.PostListingInput{
		PartnerID:         partnerID,
		ActorID:           actorID,
		Title:             req.Title,
		Description:       req.Description,
		QuantityAvailable: req.QuantityAvailable,
		ClaimLimitPerUser: req.ClaimLimitPerUser,
		PickupDeadline:    req.PickupDeadline,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// ListMine handles GET /partner/surplus.
func (h *SurplusHandler) ListMine(c *fiber.Ctx) error {
	partnerID, _, err := partnerScope(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	listings, err := h.surplus.ListForPartner(c.UserContext(), partnerID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingList(listings)})
}

// Claim handles POST /surplus/:id/claims.
func (h *SurplusHandler) Claim(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	claim, err := h.surplus.Claim(c.UserContext(), c.Params("id"), p.User.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewClaimResponse(claim)})
}

// ListClaims handles GET /surplus/claims.
func (h *SurplusHandler) ListClaims(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	claims, err := h.surplus.ListClaimsForBeneficiary(c.UserContext(), p.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClaimList(claims)})
}

// ConfirmPickup handles POST /surplus/claims/confirm.
func (h *SurplusHandler) ConfirmPickup(c *fiber.Ctx) error {
	partnerID, staffID, err := partnerScope(c)
	if err != nil {
		return err
	}

	var req dto.PickupConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	claim, err := h.surplus.ConfirmPickup(c.UserContext(), req.PickupCode, partnerID, staffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClaimResponse(claim)})
}

// CancelClaim handles POST /surplus/claims/:id/cancel.
func (h *SurplusHandler) CancelClaim(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	claim, err := h.surplus.Cancel(c.UserContext(), c.Params("id"), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClaimResponse(claim)})
}

// Complete handles POST /surplus/:id/complete.
func (h *SurplusHandler) Complete(c *fiber.Ctx) error {
	partnerID, _, err := partnerScope(c)
	if err != nil {
		return err
	}

	listing, err := h.surplus.CompleteListing(c.UserContext(), c.Params("id"), partnerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}
