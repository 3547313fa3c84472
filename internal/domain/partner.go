package domain

import "time"

// PartnerStatus represents lifecycle states for a food partner.
type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "ACTIVE"
	PartnerStatusSuspended PartnerStatus = "SUSPENDED"
)

// Partner is a food business that redeems vouchers and posts surplus listings.
type Partner struct {
	ID        string
	Name      string
	Address   string
	Status    PartnerStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
