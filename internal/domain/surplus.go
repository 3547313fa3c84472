package domain

import "time"

// ListingStatus enumerates lifecycle states for a surplus listing.
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "ACTIVE"
	ListingStatusExpired   ListingStatus = "EXPIRED"
	ListingStatusCompleted ListingStatus = "COMPLETED"
)

// ClaimStatus enumerates lifecycle states for a surplus claim.
// PENDING -> PICKED_UP | CANCELLED, both terminal.
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusPickedUp  ClaimStatus = "PICKED_UP"
	ClaimStatusCancelled ClaimStatus = "CANCELLED"
)

// SurplusListing is a partner's time-boxed offer of surplus food.
// The invariant is that the sum of non-cancelled claims never exceeds
// QuantityAvailable; remaining quantity is always derived, never stored.
type SurplusListing struct {
	ID                string
	PartnerID         string
	Title             string
	Description       *string
	QuantityAvailable int
	ClaimLimitPerUser int
	PickupDeadline    time.Time
	Status            ListingStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ListingWithRemaining pairs a listing with its derived remaining quantity
// for read-side views.
type ListingWithRemaining struct {
	SurplusListing
	Remaining int
}

// SurplusClaim is a beneficiary's reservation against a listing, identified
// at the pickup counter by its unique pickup code.
type SurplusClaim struct {
	ID            string
	ListingID     string
	BeneficiaryID string
	Status        ClaimStatus
	PickupCode    string
	ConfirmedBy   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
