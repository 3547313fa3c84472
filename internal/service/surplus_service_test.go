package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecoeats/internal/domain"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

func TestPostListingDefaultsClaimLimit(t *testing.T) {
	h := newHarness()

	listing, err := h.surplus.PostListing(context.Background(), PostListingInput{
		PartnerID:         "partner-1",
		ActorID:           "owner-1",
		Title:             "surplus pastries",
		QuantityAvailable: 10,
		PickupDeadline:    futureDeadline(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ListingStatusActive, listing.Status)
	assert.Equal(t, 1, listing.ClaimLimitPerUser)
	assert.Nil(t, listing.Description)
}

func TestPostListingValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.surplus.PostListing(ctx, PostListingInput{
		PartnerID: "partner-1", Title: " ", QuantityAvailable: 5, PickupDeadline: futureDeadline(),
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = h.surplus.PostListing(ctx, PostListingInput{
		PartnerID: "partner-1", Title: "bread", QuantityAvailable: 0, PickupDeadline: futureDeadline(),
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = h.surplus.PostListing(ctx, PostListingInput{
		PartnerID: "partner-1", Title: "bread", QuantityAvailable: 5,
		PickupDeadline: time.Now().Add(-time.Minute),
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	zero := 0
	_, err = h.surplus.PostListing(ctx, PostListingInput{
		PartnerID: "partner-1", Title: "bread", QuantityAvailable: 5,
		ClaimLimitPerUser: &zero, PickupDeadline: futureDeadline(),
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestClaimRequiresEligibility(t *testing.T) {
	h := newHarness()
	listing := h.seedActiveListing("partner-1", 5, 1, futureDeadline())

	_, err := h.surplus.Claim(context.Background(), listing.ID, "ben-1")
	assert.True(t, apperrors.IsCode(err, "NOT_ELIGIBLE"))
}

func TestClaimCreatesPendingClaimWithPickupCode(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	listing := h.seedActiveListing("partner-1", 5, 1, futureDeadline())

	claim, err := h.surplus.Claim(ctx, listing.ID, "ben-1")
	require.NoError(t, err)

	assert.Equal(t, domain.ClaimStatusPending, claim.Status)
	assert.Len(t, claim.PickupCode, 8)
	assert.Equal(t, int64(1), h.store.impactCounts()[domain.ImpactPackClaimed])

	available, err := h.surplus.ListAvailable(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, 4, available[0].Remaining)
}

func TestClaimRejectsClosedListing(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)

	expired := h.seedActiveListing("partner-1", 5, 1, futureDeadline())
	h.store.mu.Lock()
	stored := h.store.listings[expired.ID]
	stored.PickupDeadline = time.Now().Add(-time.Minute)
	h.store.listings[expired.ID] = stored
	h.store.mu.Unlock()

	_, err := h.surplus.Claim(ctx, expired.ID, "ben-1")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	completed := h.seedActiveListing("partner-1", 5, 1, futureDeadline())
	_, err = h.surplus.CompleteListing(ctx, completed.ID, "partner-1")
	require.NoError(t, err)

	_, err = h.surplus.Claim(ctx, completed.ID, "ben-1")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestClaimSoldOut(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	h.seedApprovedRequest("ben-2", domain.RequestTypeFoodPack)
	listing := h.seedActiveListing("partner-1", 1, 1, futureDeadline())

	_, err := h.surplus.Claim(ctx, listing.ID, "ben-1")
	require.NoError(t, err)

	_, err = h.surplus.Claim(ctx, listing.ID, "ben-2")
	assert.True(t, apperrors.IsCode(err, "SOLD_OUT"))
}

func TestClaimPerUserLimit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	listing := h.seedActiveListing("partner-1", 5, 1, futureDeadline())

	_, err := h.surplus.Claim(ctx, listing.ID, "ben-1")
	require.NoError(t, err)

	_, err = h.surplus.Claim(ctx, listing.ID, "ben-1")
	assert.True(t, apperrors.IsCode(err, "CLAIM_LIMIT_EXCEEDED"))
}

func TestConcurrentClaimsNeverOversell(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	const quantity = 3
	const claimants = 10
	listing := h.seedActiveListing("partner-1", quantity, 1, futureDeadline())
	for i := 0; i < claimants; i++ {
		h.seedApprovedRequest(fmt.Sprintf("ben-%d", i), domain.RequestTypeFoodPack)
	}

	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.surplus.Claim(ctx, listing.ID, fmt.Sprintf("ben-%d", i))
		}(i)
	}
	wg.Wait()

	successes, soldOut := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, "SOLD_OUT"):
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, quantity, successes)
	assert.Equal(t, claimants-quantity, soldOut)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	active := 0
	for _, claim := range h.store.claims {
		if claim.ListingID == listing.ID && claim.Status != domain.ClaimStatusCancelled {
			active++
		}
	}
	assert.Equal(t, quantity, active)
}

func TestCancelFreesQuantity(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	h.seedApprovedRequest("ben-2", domain.RequestTypeFoodPack)
	listing := h.seedActiveListing("partner-1", 1, 1, futureDeadline())

	claim, err := h.surplus.Claim(ctx, listing.ID, "ben-1")
	require.NoError(t, err)

	_, err = h.surplus.Claim(ctx, listing.ID, "ben-2")
	require.True(t, apperrors.IsCode(err, "SOLD_OUT"))

	cancelled, err := h.surplus.Cancel(ctx, claim.ID, "ben-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusCancelled, cancelled.Status)

	_, err = h.surplus.Claim(ctx, listing.ID, "ben-2")
	assert.NoError(t, err)
}

func TestCancelOnlyOwnPendingClaims(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	listing := h.seedActiveListing("partner-1", 2, 1, futureDeadline())

	claim, err := h.surplus.Claim(ctx, listing.ID, "ben-1")
	require.NoError(t, err)

	_, err = h.surplus.Cancel(ctx, claim.ID, "ben-2")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = h.surplus.ConfirmPickup(ctx, claim.PickupCode, "partner-1", "staff-1")
	require.NoError(t, err)

	_, err = h.surplus.Cancel(ctx, claim.ID, "ben-1")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestConfirmPickupScopedToPartner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedApprovedRequest("ben-1", domain.RequestTypeFoodPack)
	listing := h.seedActiveListing("partner-1", 2, 1, futureDeadline())

	claim, err := h.surplus.Claim(ctx, listing.ID, "ben-1")
	require.NoError(t, err)

	_, err = h.surplus.ConfirmPickup(ctx, claim.PickupCode, "partner-2", "staff-9")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	confirmed, err := h.surplus.ConfirmPickup(ctx, claim.PickupCode, "partner-1", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusPickedUp, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedBy)
	assert.Equal(t, "staff-1", *confirmed.ConfirmedBy)
	assert.Equal(t, int64(1), h.store.impactCounts()[domain.ImpactPackPickedUp])

	_, err = h.surplus.ConfirmPickup(ctx, claim.PickupCode, "partner-1", "staff-2")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestCompleteListingOwnershipAndState(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	listing := h.seedActiveListing("partner-1", 2, 1, futureDeadline())

	_, err := h.surplus.CompleteListing(ctx, listing.ID, "partner-2")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	completed, err := h.surplus.CompleteListing(ctx, listing.ID, "partner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusCompleted, completed.Status)

	_, err = h.surplus.CompleteListing(ctx, listing.ID, "partner-1")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}
