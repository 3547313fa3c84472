package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/api/dto"
	"github.com/spec-kit/ecoeats/internal/service"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// VouchersHandler exposes voucher lifecycle endpoints.
type VouchersHandler struct {
	vouchers *service.VoucherService
}

// NewVouchersHandler constructs handler.
func NewVouchersHandler(voucherService *service.VoucherService) *VouchersHandler {
	return &VouchersHandler{vouchers: voucherService}
}

// ListMine handles GET /vouchers.
func (h *VouchersHandler) ListMine(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	vouchers, err := h.vouchers.ListForBeneficiary(c.UserContext(), p.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVoucherList(vouchers)})
}

// Lookup handles GET /vouchers/lookup?code=|qr_token= for the counter.
func (h *VouchersHandler) Lookup(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	qrToken := strings.TrimSpace(c.Query("qr_token"))

	switch {
	case code != "":
		voucher, err := h.vouchers.Lookup(c.UserContext(), code)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewVoucherResponse(voucher)})
	case qrToken != "":
		voucher, err := h.vouchers.LookupByQRToken(c.UserContext(), qrToken)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewVoucherResponse(voucher)})
	default:
		return apperrors.NewValidationError("code or qr_token required", nil)
	}
}

// Redeem handles POST /vouchers/redeem.
func (h *VouchersHandler) Redeem(c *fiber.Ctx) error {
	partnerID, staffID, err := partnerScope(c)
	if err != nil {
		return err
	}

	var req dto.VoucherRedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	voucher, redemption, err := h.vouchers.Redeem(c.UserContext(), service.RedeemInput{
		Code:            req.Code,
		QRToken:         req.QRToken,
		PartnerID:       partnerID,
		StaffID:         staffID,
		MealDescription: req.MealDescription,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"voucher":    dto.NewVoucherResponse(voucher),
			"redemption": dto.NewRedemptionResponse(redemption),
		},
	})
}

// PartnerRedemptions handles GET /partner/redemptions.
func (h *VouchersHandler) PartnerRedemptions(c *fiber.Ctx) error {
	partnerID, _, err := partnerScope(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	redemptions, err := h.vouchers.ListRedemptionsForPartner(c.UserContext(), partnerID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRedemptionList(redemptions)})
}

// Issue handles POST /admin/vouchers.
func (h *VouchersHandler) Issue(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.VoucherIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RequestID == "" {
		return apperrors.NewValidationError("request_id required", nil)
	}

	voucher, err := h.vouchers.Issue(c.UserContext(), service.IssueInput{
		RequestID:       req.RequestID,
		ValueMinorUnits: req.ValueMinorUnits,
		IssuerID:        p.User.ID,
		ExpiresInDays:   req.ExpiresInDays,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewVoucherResponse(voucher)})
}

// Revoke handles POST /admin/vouchers/:id/revoke.
func (h *VouchersHandler) Revoke(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	voucher, err := h.vouchers.Revoke(c.UserContext(), c.Params("id"), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVoucherResponse(voucher)})
}
