package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecoeats/internal/domain"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

func newImpactService(store *memStore) *ImpactService {
	return NewImpactService(ImpactDependencies{
		ImpactRepo:  &fakeImpactRepo{store: store},
		VoucherRepo: &fakeVoucherRepo{store: store},
		SurplusRepo: &fakeSurplusRepo{store: store},
		PartnerRepo: &fakePartnerRepo{store: store},
	})
}

func TestRecordAppendsToLedger(t *testing.T) {
	store := newMemStore()
	svc := newImpactService(store)

	relatedID := "voucher-1"
	event, err := svc.Record(context.Background(), domain.ImpactMealServed, &relatedID, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 3, event.Count)
	assert.Equal(t, int64(3), store.impactCounts()[domain.ImpactMealServed])
}

func TestRecordDefaultsCountToOne(t *testing.T) {
	store := newMemStore()
	svc := newImpactService(store)

	event, err := svc.Record(context.Background(), domain.ImpactPackClaimed, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, event.Count)
}

func TestRecordRejectsUnknownEventType(t *testing.T) {
	svc := newImpactService(newMemStore())

	_, err := svc.Record(context.Background(), domain.ImpactEventType("TREES_PLANTED"), nil, 1)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestSummarizeReducesLedgerAndLiveCounts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := newImpactService(h.store)

	issueVoucher(t, h, "ben-1", 1000)
	redeemable := issueVoucher(t, h, "ben-2", 500)
	_, _, err := h.vouchers.Redeem(ctx, RedeemInput{Code: redeemable.Code, PartnerID: "partner-1", StaffID: "staff-1"})
	require.NoError(t, err)

	submitted, err := h.requests.Submit(ctx, "ben-3", domain.RequestTypeFoodPack, domain.UrgencyMed, "")
	require.NoError(t, err)
	_, err = h.requests.Review(ctx, submitted.ID, domain.RequestStatusApproved, "admin-1")
	require.NoError(t, err)

	listing := h.seedActiveListing("partner-1", 5, 1, time.Now().Add(4*time.Hour))
	_, err = h.surplus.Claim(ctx, listing.ID, "ben-3")
	require.NoError(t, err)

	registerPartner(t, h, "Corner Bakery", "owner@bakery.example")

	summary, err := svc.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.MealsFunded)
	assert.Equal(t, int64(1), summary.MealsServed)
	assert.Equal(t, int64(1), summary.PacksClaimed)
	assert.Equal(t, int64(1), summary.RequestsApproved)
	assert.Equal(t, int64(1), summary.PartnersJoined)
	assert.Equal(t, int64(1), summary.ActiveVouchers)
	assert.Equal(t, int64(1), summary.ActiveListings)
	assert.Equal(t, int64(1), summary.TotalPartners)
	assert.False(t, summary.GeneratedAt.IsZero())
}
