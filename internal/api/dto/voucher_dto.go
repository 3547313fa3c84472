package dto

import (
	"time"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// VoucherIssueRequest payload for admin voucher issuance.
type VoucherIssueRequest struct {
	RequestID       string `json:"request_id"`
	ValueMinorUnits int64  `json:"value_minor_units"`
	ExpiresInDays   *int   `json:"expires_in_days,omitempty"`
}

// VoucherRedeemRequest payload for a counter redemption. Exactly one of
// code or qr_token identifies the voucher.
type VoucherRedeemRequest struct {
	Code            string `json:"code,omitempty"`
	QRToken         string `json:"qr_token,omitempty"`
	MealDescription string `json:"meal_description,omitempty"`
}

// VoucherResponse is the voucher view.
type VoucherResponse struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	QRToken         string     `json:"qr_token"`
	ValueMinorUnits int64      `json:"value_minor_units"`
	BeneficiaryID   string     `json:"beneficiary_id"`
	Status          string     `json:"status"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewVoucherResponse maps a voucher.
func NewVoucherResponse(voucher *domain.Voucher) VoucherResponse {
	return VoucherResponse{
		ID:              voucher.ID,
		Code:            voucher.Code,
		QRToken:         voucher.QRToken,
		ValueMinorUnits: voucher.ValueMinorUnits,
		BeneficiaryID:   voucher.BeneficiaryID,
		Status:          string(voucher.Status),
		ExpiresAt:       voucher.ExpiresAt,
		CreatedAt:       voucher.CreatedAt,
	}
}

// NewVoucherList maps a slice of vouchers.
func NewVoucherList(vouchers []domain.Voucher) []VoucherResponse {
	out := make([]VoucherResponse, 0, len(vouchers))
	for i := range vouchers {
		out = append(out, NewVoucherResponse(&vouchers[i]))
	}
	return out
}

// RedemptionResponse is the redemption audit view.
type RedemptionResponse struct {
	ID              string    `json:"id"`
	VoucherID       string    `json:"voucher_id"`
	PartnerID       string    `json:"partner_id"`
	BeneficiaryID   string    `json:"beneficiary_id"`
	ValueMinorUnits int64     `json:"value_minor_units"`
	MealDescription *string   `json:"meal_description,omitempty"`
	RedeemedAt      time.Time `json:"redeemed_at"`
}

// NewRedemptionResponse maps a redemption.
func NewRedemptionResponse(redemption *domain.VoucherRedemption) RedemptionResponse {
	return RedemptionResponse{
		ID:              redemption.ID,
		VoucherID:       redemption.VoucherID,
		PartnerID:       redemption.PartnerID,
		BeneficiaryID:   redemption.BeneficiaryID,
		ValueMinorUnits: redemption.ValueMinorUnits,
		MealDescription: redemption.MealDescription,
		RedeemedAt:      redemption.RedeemedAt,
	}
}

// NewRedemptionList maps a slice of redemptions.
func NewRedemptionList(redemptions []domain.VoucherRedemption) []RedemptionResponse {
	out := make([]RedemptionResponse, 0, len(redemptions))
	for i := range redemptions {
		out = append(out, NewRedemptionResponse(&redemptions[i]))
	}
	return out
}
