package domain

import "time"

// VoucherStatus enumerates lifecycle states for a voucher.
// ACTIVE is the only non-terminal state. EXPIRED exists in the schema but is
// never set by an operation: expiry is detected lazily at redemption time.
type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "ACTIVE"
	VoucherStatusRedeemed VoucherStatus = "REDEEMED"
	VoucherStatusExpired  VoucherStatus = "EXPIRED"
	VoucherStatusRevoked  VoucherStatus = "REVOKED"
)

// Voucher is a redeemable unit of meal value issued to a beneficiary.
// ValueMinorUnits is the face value in minor currency units.
type Voucher struct {
	ID              string
	Code            string
	QRToken         string
	ValueMinorUnits int64
	BeneficiaryID   string
	IssuedBy        string
	Status          VoucherStatus
	ExpiresAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ExpiredAt reports whether the voucher's expiry has passed at the given instant.
func (v *Voucher) ExpiredAt(now time.Time) bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}

// VoucherRedemption is the immutable audit record of a completed redemption.
// ValueMinorUnits snapshots the voucher's value at redemption time.
type VoucherRedemption struct {
	ID              string
	VoucherID       string
	PartnerID       string
	BeneficiaryID   string
	StaffID         string
	ValueMinorUnits int64
	MealDescription *string
	RedeemedAt      time.Time
}
