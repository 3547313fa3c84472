package events

import (
	"time"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted EventType = "request_submitted"
	EventRequestReviewed  EventType = "request_reviewed"
	EventVoucherIssued    EventType = "voucher_issued"
	EventVoucherRedeemed  EventType = "voucher_redeemed"
	EventVoucherRevoked   EventType = "voucher_revoked"
	EventListingPosted    EventType = "listing_posted"
	EventClaimCreated     EventType = "claim_created"
	EventClaimPickedUp    EventType = "claim_picked_up"
	EventClaimCancelled   EventType = "claim_cancelled"
	EventPartnerJoined    EventType = "partner_joined"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services. SubjectID refers to
// the primary entity of the event (request, voucher, listing, claim, partner).
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	Type    domain.RequestType `json:"type"`
	Urgency domain.Urgency     `json:"urgency"`
}

// RequestReviewedPayload payload.
type RequestReviewedPayload struct {
	Decision   domain.RequestStatus `json:"decision"`
	ReviewerID string               `json:"reviewer_id"`
}

// VoucherIssuedPayload payload.
type VoucherIssuedPayload struct {
	RequestID       string     `json:"request_id"`
	BeneficiaryID   string     `json:"beneficiary_id"`
	ValueMinorUnits int64      `json:"value_minor_units"`
	Code            string     `json:"code"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// VoucherRedeemedPayload payload.
type VoucherRedeemedPayload struct {
	RedemptionID    string `json:"redemption_id"`
	PartnerID       string `json:"partner_id"`
	BeneficiaryID   string `json:"beneficiary_id"`
	ValueMinorUnits int64  `json:"value_minor_units"`
}

// VoucherRevokedPayload payload.
type VoucherRevokedPayload struct {
	AdminID string `json:"admin_id"`
}

// ListingPostedPayload payload.
type ListingPostedPayload struct {
	PartnerID         string    `json:"partner_id"`
	Title             string    `json:"title"`
	QuantityAvailable int       `json:"quantity_available"`
	PickupDeadline    time.Time `json:"pickup_deadline"`
}

// ClaimCreatedPayload payload.
type ClaimCreatedPayload struct {
	ListingID     string `json:"listing_id"`
	BeneficiaryID string `json:"beneficiary_id"`
}

// ClaimPickedUpPayload payload.
type ClaimPickedUpPayload struct {
	ListingID string `json:"listing_id"`
	PartnerID string `json:"partner_id"`
	StaffID   string `json:"staff_id"`
}

// ClaimCancelledPayload payload.
type ClaimCancelledPayload struct {
	ListingID string `json:"listing_id"`
}

// PartnerJoinedPayload payload.
type PartnerJoinedPayload struct {
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}
