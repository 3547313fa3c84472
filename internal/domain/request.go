package domain

import "time"

// RequestType distinguishes what kind of aid is being asked for.
type RequestType string

const (
	RequestTypeVoucher  RequestType = "VOUCHER"
	RequestTypeFoodPack RequestType = "FOOD_PACK"
)

// ValidRequestType reports whether the value is a known request type.
func ValidRequestType(t RequestType) bool {
	return t == RequestTypeVoucher || t == RequestTypeFoodPack
}

// Urgency enumerates how pressing a request is.
type Urgency string

const (
	UrgencyLow  Urgency = "LOW"
	UrgencyMed  Urgency = "MED"
	UrgencyHigh Urgency = "HIGH"
)

// ValidUrgency reports whether the value is a known urgency level.
func ValidUrgency(u Urgency) bool {
	return u == UrgencyLow || u == UrgencyMed || u == UrgencyHigh
}

// RequestStatus enumerates lifecycle states for a support request.
// PENDING -> APPROVED | DECLINED; APPROVED -> FULFILLED.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusDeclined  RequestStatus = "DECLINED"
	RequestStatusFulfilled RequestStatus = "FULFILLED"
)

// SupportRequest is a beneficiary's aid ask. ReviewedBy/ReviewedAt are set
// exactly when the status leaves PENDING.
type SupportRequest struct {
	ID            string
	BeneficiaryID string
	Type          RequestType
	Urgency       Urgency
	Message       *string
	Status        RequestStatus
	ReviewedBy    *string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FoodPackEligibility is the derived eligibility gate for surplus claims.
// CanClaim holds iff the beneficiary has more approved-or-fulfilled FOOD_PACK
// requests than non-cancelled surplus claims.
type FoodPackEligibility struct {
	ApprovedCount int
	UsedCount     int
	CanClaim      bool
}
