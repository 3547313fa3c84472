package domain

import "time"

// ImpactEventType is the closed set of facts the impact ledger records.
type ImpactEventType string

const (
	ImpactMealFunded      ImpactEventType = "MEAL_FUNDED"
	ImpactMealServed      ImpactEventType = "MEAL_SERVED"
	ImpactPackClaimed     ImpactEventType = "PACK_CLAIMED"
	ImpactPackPickedUp    ImpactEventType = "PACK_PICKED_UP"
	ImpactRequestApproved ImpactEventType = "REQUEST_APPROVED"
	ImpactPartnerJoined   ImpactEventType = "PARTNER_JOINED"
)

// ValidImpactEventType reports whether the value is a known event type.
func ValidImpactEventType(t ImpactEventType) bool {
	switch t {
	case ImpactMealFunded, ImpactMealServed, ImpactPackClaimed,
		ImpactPackPickedUp, ImpactRequestApproved, ImpactPartnerJoined:
		return true
	}
	return false
}

// ImpactEvent is an append-only fact. Events are never updated or deleted;
// all aggregate reporting is derived by summation over the log.
type ImpactEvent struct {
	ID        string
	EventType ImpactEventType
	RelatedID *string
	Count     int
	CreatedAt time.Time
}

// ImpactSummary aggregates the ledger plus live entity-status counts for
// reporting views.
type ImpactSummary struct {
	MealsFunded      int64
	MealsServed      int64
	PacksClaimed     int64
	PacksPickedUp    int64
	RequestsApproved int64
	PartnersJoined   int64
	ActiveVouchers   int64
	ActiveListings   int64
	TotalPartners    int64
	GeneratedAt      time.Time
}
