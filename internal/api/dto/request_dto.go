package dto

import (
	"time"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// SupportRequestCreate payload for a new support request.
type SupportRequestCreate struct {
	Type    string `json:"type"`
	Urgency string `json:"urgency"`
	Message string `json:"message"`
}

// SupportRequestReview payload for an admin decision.
type SupportRequestReview struct {
	Decision string `json:"decision"`
}

// SupportRequestResponse is the request view.
type SupportRequestResponse struct {
	ID            string     `json:"id"`
	BeneficiaryID string     `json:"beneficiary_id"`
	Type          string     `json:"type"`
	Urgency       string     `json:"urgency"`
	Message       *string    `json:"message,omitempty"`
	Status        string     `json:"status"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewSupportRequestResponse maps a request.
func NewSupportRequestResponse(request *domain.SupportRequest) SupportRequestResponse {
	return SupportRequestResponse{
		ID:            request.ID,
		BeneficiaryID: request.BeneficiaryID,
		Type:          string(request.Type),
		Urgency:       string(request.Urgency),
		Message:       request.Message,
		Status:        string(request.Status),
		ReviewedBy:    request.ReviewedBy,
		ReviewedAt:    request.ReviewedAt,
		CreatedAt:     request.CreatedAt,
	}
}

// NewSupportRequestList maps a slice of requests.
func NewSupportRequestList(requests []domain.SupportRequest) []SupportRequestResponse {
	out := make([]SupportRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, NewSupportRequestResponse(&requests[i]))
	}
	return out
}

// EligibilityResponse is the food-pack eligibility view.
type EligibilityResponse struct {
	ApprovedCount int  `json:"approved_count"`
	UsedCount     int  `json:"used_count"`
	CanClaim      bool `json:"can_claim"`
}

// NewEligibilityResponse maps the eligibility gate.
func NewEligibilityResponse(e *domain.FoodPackEligibility) EligibilityResponse {
	return EligibilityResponse{
		ApprovedCount: e.ApprovedCount,
		UsedCount:     e.UsedCount,
		CanClaim:      e.CanClaim,
	}
}
