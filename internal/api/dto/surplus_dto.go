package dto

import (
	"time"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// ListingCreateRequest payload for a new surplus listing.
type ListingCreateRequest struct {
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	QuantityAvailable int       `json:"quantity_available"`
	ClaimLimitPerUser *int      `json:"claim_limit_per_user,omitempty"`
	PickupDeadline    time.Time `json:"pickup_deadline"`
}

// PickupConfirmRequest payload for a counter pickup confirmation.
type PickupConfirmRequest struct {
	PickupCode string `json:"pickup_code"`
}

// ListingResponse is the listing view.
type ListingResponse struct {
	ID                string    `json:"id"`
	PartnerID         string    `json:"partner_id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	QuantityAvailable int       `json:"quantity_available"`
	ClaimLimitPerUser int       `json:"claim_limit_per_user"`
	PickupDeadline    time.Time `json:"pickup_deadline"`
	Status            string    `json:"status"`
	Remaining         *int      `json:"remaining,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewListingResponse maps a listing.
func NewListingResponse(listing *domain.SurplusListing) ListingResponse {
	return ListingResponse{
		ID:                listing.ID,
		PartnerID:         listing.PartnerID,
		Title:             listing.Title,
		Description:       listing.Description,
		QuantityAvailable: listing.QuantityAvailable,
		ClaimLimitPerUser: listing.ClaimLimitPerUser,
		PickupDeadline:    listing.PickupDeadline,
		Status:            string(listing.Status),
		CreatedAt:         listing.CreatedAt,
	}
}

// NewListingList maps a slice of listings.
func NewListingList(listings []domain.SurplusListing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, NewListingResponse(&listings[i]))
	}
	return out
}

// NewAvailableListingList maps listings carrying derived remaining quantity.
func NewAvailableListingList(listings []domain.ListingWithRemaining) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		resp := NewListingResponse(&listings[i].SurplusListing)
		remaining := listings[i].Remaining
		resp.Remaining = &remaining
		out = append(out, resp)
	}
	return out
}

// ClaimResponse is the claim view.
type ClaimResponse struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listing_id"`
	BeneficiaryID string    `json:"beneficiary_id"`
	Status        string    `json:"status"`
	PickupCode    string    `json:"pickup_code"`
	ConfirmedBy   *string   `json:"confirmed_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewClaimResponse maps a claim.
func NewClaimResponse(claim *domain.SurplusClaim) ClaimResponse {
	return ClaimResponse{
		ID:            claim.ID,
		ListingID:     claim.ListingID,
		BeneficiaryID: claim.BeneficiaryID,
		Status:        string(claim.Status),
		PickupCode:    claim.PickupCode,
		ConfirmedBy:   claim.ConfirmedBy,
		CreatedAt:     claim.CreatedAt,
	}
}

// NewClaimList maps a slice of claims.
func NewClaimList(claims []domain.SurplusClaim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for i := range claims {
		out = append(out, NewClaimResponse(&claims[i]))
	}
	return out
}
