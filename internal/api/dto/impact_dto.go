package dto

import (
	"time"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// ImpactSummaryResponse is the public impact view.
type ImpactSummaryResponse struct {
	MealsFunded      int64     `json:"meals_funded"`
	MealsServed      int64     `json:"meals_served"`
	PacksClaimed     int64     `json:"packs_claimed"`
	PacksPickedUp    int64     `json:"packs_picked_up"`
	RequestsApproved int64     `json:"requests_approved"`
	PartnersJoined   int64     `json:"partners_joined"`
	ActiveVouchers   int64     `json:"active_vouchers"`
	ActiveListings   int64     `json:"active_listings"`
	TotalPartners    int64     `json:"total_partners"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// NewImpactSummaryResponse maps a summary.
func NewImpactSummaryResponse(summary *domain.ImpactSummary) ImpactSummaryResponse {
	return ImpactSummaryResponse{
		MealsFunded:      summary.MealsFunded,
		MealsServed:      summary.MealsServed,
		PacksClaimed:     summary.PacksClaimed,
		PacksPickedUp:    summary.PacksPickedUp,
		RequestsApproved: summary.RequestsApproved,
		PartnersJoined:   summary.PartnersJoined,
		ActiveVouchers:   summary.ActiveVouchers,
		ActiveListings:   summary.ActiveListings,
		TotalPartners:    summary.TotalPartners,
		GeneratedAt:      summary.GeneratedAt,
	}
}
