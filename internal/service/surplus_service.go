package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/codes"
	"github.com/spec-kit/ecoeats/internal/domain"
	"github.com/spec-kit/ecoeats/internal/events"
	"github.com/spec-kit/ecoeats/internal/repository"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// defaultClaimLimit applies when a listing does not set a per-user limit.
const defaultClaimLimit = 1

// SurplusService governs surplus listings and claims. Claiming is guarded at
// listing-row granularity: the oversell invariant (non-cancelled claims <=
// quantity) spans all claims against a listing, so the listing row is the
// lock, not the individual claim.
type SurplusService struct {
	db         repository.DB
	surplus    repository.SurplusRepository
	requests   *RequestService
	impact     repository.ImpactRepository
	dispatcher events.Dispatcher
	cache      SummaryCache
}

// SurplusDependencies bundles requirements for the surplus service.
type SurplusDependencies struct {
	DB             repository.DB
	SurplusRepo    repository.SurplusRepository
	RequestService *RequestService
	ImpactRepo     repository.ImpactRepository
	Dispatcher     events.Dispatcher
	Cache          SummaryCache
}

// NewSurplusService constructs the service.
func NewSurplusService(deps SurplusDependencies) *SurplusService {
	return &SurplusService{
		db:         deps.DB,
		surplus:    deps.SurplusRepo,
		requests:   deps.RequestService,
		impact:     deps.ImpactRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// PostListingInput describes a new surplus listing.
type PostListingInput struct {
	PartnerID         string
	ActorID           string
	Title             string
	Description       string
	QuantityAvailable int
	ClaimLimitPerUser *int
	PickupDeadline    time.Time
}

// PostListing publishes a partner's surplus batch.
func (s *SurplusService) PostListing(ctx context.Context, input PostListingInput) (*domain.SurplusListing, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.QuantityAvailable <= 0 {
		return nil, apperrors.NewValidationError("quantity_available must be positive",
			map[string]any{"quantity_available": input.QuantityAvailable})
	}
	if input.PickupDeadline.Before(time.Now()) {
		return nil, apperrors.NewValidationError("pickup_deadline must not be in the past", nil)
	}
	claimLimit := defaultClaimLimit
	if input.ClaimLimitPerUser != nil {
		if *input.ClaimLimitPerUser <= 0 {
			return nil, apperrors.NewValidationError("claim_limit_per_user must be positive", nil)
		}
		claimLimit = *input.ClaimLimitPerUser
	}

	listing := &domain.SurplusListing{
		PartnerID:         input.PartnerID,
		Title:             title,
		QuantityAvailable: input.QuantityAvailable,
		ClaimLimitPerUser: claimLimit,
		PickupDeadline:    input.PickupDeadline,
		Status:            domain.ListingStatusActive,
	}
	if trimmed := strings.TrimSpace(input.Description); trimmed != "" {
		listing.Description = &trimmed
	}
	if err := s.surplus.CreateListing(ctx, listing); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventListingPosted,
		SubjectID: listing.ID,
		Actor:     events.Actor{UserID: input.ActorID, Role: domain.RolePartnerOwner},
		Payload: events.ListingPostedPayload{
			PartnerID:         listing.PartnerID,
			Title:             listing.Title,
			QuantityAvailable: listing.QuantityAvailable,
			PickupDeadline:    listing.PickupDeadline,
		},
	})
	return listing, nil
}

// ListAvailable returns claimable listings with derived remaining quantity.
func (s *SurplusService) ListAvailable(ctx context.Context, limit, offset int) ([]domain.ListingWithRemaining, error) {
	listings, err := s.surplus.ListAvailable(ctx, time.Now(), limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return listings, nil
}

// Claim reserves one unit of a listing for an eligible beneficiary. The
// listing row lock makes the eligibility check, the quantity check and the
// insert one atomic step, so concurrent claims cannot oversell.
func (s *SurplusService) Claim(ctx context.Context, listingID, beneficiaryID string) (*domain.SurplusClaim, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	listing, err := s.surplus.GetListingByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("surplus listing", map[string]any{"listing_id": listingID})
		}
		return nil, apperrors.MapError(err)
	}
	if listing.Status != domain.ListingStatusActive || listing.PickupDeadline.Before(time.Now()) {
		return nil, apperrors.NewInvalidTransition("listing is not open for claims",
			map[string]any{"current_status": listing.Status})
	}

	eligibility, err := s.requests.eligibility(ctx, tx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanClaim {
		return nil, apperrors.NewNotEligible("no unconsumed approved food-pack request", map[string]any{
			"approved_count": eligibility.ApprovedCount,
			"used_count":     eligibility.UsedCount,
		})
	}

	claimed, err := s.surplus.CountActiveClaims(ctx, tx, listing.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if claimed >= listing.QuantityAvailable {
		return nil, apperrors.NewSoldOut(listing.ID)
	}
	mine, err := s.surplus.CountActiveClaimsByUser(ctx, tx, listing.ID, beneficiaryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if mine >= listing.ClaimLimitPerUser {
		return nil, apperrors.NewClaimLimitExceeded(listing.ClaimLimitPerUser)
	}

	pickupCode, err := s.uniquePickupCode(ctx, tx)
	if err != nil {
		return nil, err
	}
	claim := &domain.SurplusClaim{
		ListingID:     listing.ID,
		BeneficiaryID: beneficiaryID,
		Status:        domain.ClaimStatusPending,
		PickupCode:    pickupCode,
	}
	if err := s.surplus.CreateClaim(ctx, tx, claim); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewCodeGenerationExhausted(err)
		}
		return nil, apperrors.MapError(err)
	}
	event := &domain.ImpactEvent{
		EventType: domain.ImpactPackClaimed,
		RelatedID: &claim.ID,
		Count:     1,
	}
	if err := s.impact.Append(ctx, tx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	invalidateSummary(ctx, s.cache)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventClaimCreated,
		SubjectID: claim.ID,
		Actor:     events.Actor{UserID: beneficiaryID, Role: domain.RoleBeneficiary},
		Payload: events.ClaimCreatedPayload{
			ListingID:     claim.ListingID,
			BeneficiaryID: beneficiaryID,
		},
	})
	return claim, nil
}

func (s *SurplusService) uniquePickupCode(ctx context.Context, q repository.Querier) (string, error) {
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return "", apperrors.NewCodeGenerationExhausted(nil)
		}
		candidate := codes.NewPickupCode()
		inUse, err := s.surplus.PickupCodeInUse(ctx, q, candidate)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if !inUse {
			return candidate, nil
		}
	}
}

// ConfirmPickup completes a claim at the counter. The pickup code lookup is
// scoped to the partner's own listings; another partner's code is not found.
func (s *SurplusService) ConfirmPickup(ctx context.Context, pickupCode, partnerID, staffID string) (*domain.SurplusClaim, error) {
	code := strings.TrimSpace(pickupCode)
	if code == "" {
		return nil, apperrors.NewValidationError("pickup_code required", nil)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	claim, err := s.surplus.GetClaimByPickupCodeForUpdate(ctx, tx, code, partnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("surplus claim", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if claim.Status != domain.ClaimStatusPending {
		return nil, apperrors.NewInvalidTransition("claim already settled",
			map[string]any{"current_status": claim.Status})
	}

	if err := s.surplus.SetClaimStatus(ctx, tx, claim.ID, domain.ClaimStatusPending, domain.ClaimStatusPickedUp, &staffID); err != nil {
		return nil, apperrors.MapError(err)
	}
	event := &domain.ImpactEvent{
		EventType: domain.ImpactPackPickedUp,
		RelatedID: &claim.ID,
		Count:     1,
	}
	if err := s.impact.Append(ctx, tx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	claim.Status = domain.ClaimStatusPickedUp
	claim.ConfirmedBy = &staffID

	invalidateSummary(ctx, s.cache)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventClaimPickedUp,
		SubjectID: claim.ID,
		Actor:     events.Actor{UserID: staffID, Role: domain.RolePartnerStaff},
		Payload: events.ClaimPickedUpPayload{
			ListingID: claim.ListingID,
			PartnerID: partnerID,
			StaffID:   staffID,
		},
	})
	return claim, nil
}

// Cancel releases a PENDING claim, freeing its reserved quantity for other
// claimants via the derived remaining count. No ledger event.
func (s *SurplusService) Cancel(ctx context.Context, claimID, beneficiaryID string) (*domain.SurplusClaim, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	claim, err := s.surplus.GetClaimByIDForUpdate(ctx, tx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("surplus claim", map[string]any{"claim_id": claimID})
		}
		return nil, apperrors.MapError(err)
	}
	if claim.BeneficiaryID != beneficiaryID {
		return nil, apperrors.NewNotFound("surplus claim", map[string]any{"claim_id": claimID})
	}
	if claim.Status != domain.ClaimStatusPending {
		return nil, apperrors.NewInvalidTransition("only PENDING claims can be cancelled",
			map[string]any{"current_status": claim.Status})
	}

	if err := s.surplus.SetClaimStatus(ctx, tx, claim.ID, domain.ClaimStatusPending, domain.ClaimStatusCancelled, nil); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	claim.Status = domain.ClaimStatusCancelled
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventClaimCancelled,
		SubjectID: claim.ID,
		Actor:     events.Actor{UserID: beneficiaryID, Role: domain.RoleBeneficiary},
		Payload:   events.ClaimCancelledPayload{ListingID: claim.ListingID},
	})
	return claim, nil
}

// CompleteListing lets a partner close its own ACTIVE listing early.
func (s *SurplusService) CompleteListing(ctx context.Context, listingID, partnerID string) (*domain.SurplusListing, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	listing, err := s.surplus.GetListingByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("surplus listing", map[string]any{"listing_id": listingID})
		}
		return nil, apperrors.MapError(err)
	}
	if listing.PartnerID != partnerID {
		return nil, apperrors.NewNotFound("surplus listing", map[string]any{"listing_id": listingID})
	}
	if listing.Status != domain.ListingStatusActive {
		return nil, apperrors.NewInvalidTransition("only ACTIVE listings can be completed",
			map[string]any{"current_status": listing.Status})
	}
	if err := s.surplus.SetListingStatus(ctx, tx, listing.ID, domain.ListingStatusActive, domain.ListingStatusCompleted); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	listing.Status = domain.ListingStatusCompleted
	return listing, nil
}

// ListForPartner returns a partner's own listings.
func (s *SurplusService) ListForPartner(ctx context.Context, partnerID string, limit, offset int) ([]domain.SurplusListing, error) {
	listings, err := s.surplus.ListByPartner(ctx, partnerID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return listings, nil
}

// ListClaimsForBeneficiary returns the beneficiary's own claims.
func (s *SurplusService) ListClaimsForBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.SurplusClaim, error) {
	claims, err := s.surplus.ListClaimsByBeneficiary(ctx, beneficiaryID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return claims, nil
}
