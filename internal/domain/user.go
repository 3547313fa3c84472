package domain

import "time"

// Role enumerates the account roles. A role is fixed at registration;
// no operation changes it afterwards.
type Role string

const (
	RoleBeneficiary  Role = "BENEFICIARY"
	RoleDonor        Role = "DONOR"
	RolePartnerOwner Role = "PARTNER_OWNER"
	RolePartnerStaff Role = "PARTNER_STAFF"
	RoleVolunteer    Role = "VOLUNTEER"
	RoleAdmin        Role = "ADMIN"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleBeneficiary, RoleDonor, RolePartnerOwner, RolePartnerStaff, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for every account in the system. Partner
// owners and partner staff carry the partner they belong to.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	PartnerID    *string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPartnerAffiliated reports whether the user acts on behalf of a partner.
func (u *User) IsPartnerAffiliated() bool {
	return (u.Role == RolePartnerOwner || u.Role == RolePartnerStaff) && u.PartnerID != nil
}
