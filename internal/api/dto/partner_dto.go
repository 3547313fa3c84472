package dto

import "github.com/spec-kit/ecoeats/internal/domain"

// PartnerRegisterRequest payload for partner onboarding: the business plus
// its owner account.
type PartnerRegisterRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	OwnerName     string `json:"owner_name"`
	OwnerEmail    string `json:"owner_email"`
	OwnerPassword string `json:"owner_password"`
}

// PartnerStaffRequest payload for adding a staff account.
type PartnerStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PartnerResponse is the public partner view.
type PartnerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

// NewPartnerResponse maps a partner.
func NewPartnerResponse(partner *domain.Partner) PartnerResponse {
	return PartnerResponse{
		ID:      partner.ID,
		Name:    partner.Name,
		Address: partner.Address,
		Status:  string(partner.Status),
	}
}
