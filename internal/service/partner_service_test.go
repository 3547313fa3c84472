package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecoeats/internal/domain"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

func registerPartner(t *testing.T, h *harness, name, ownerEmail string) (*domain.Partner, *domain.User) {
	t.Helper()
	partner, owner, err := h.partners.Register(context.Background(), RegisterPartnerInput{
		Name:          name,
		Address:       "12 Green Street",
		OwnerName:     "Owner",
		OwnerEmail:    ownerEmail,
		OwnerPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	return partner, owner
}

func TestRegisterPartnerCreatesOwnerAndLedgerEvent(t *testing.T) {
	h := newHarness()

	partner, owner, err := h.partners.Register(context.Background(), RegisterPartnerInput{
		Name:          "Corner Bakery",
		Address:       "12 Green Street",
		OwnerName:     "Dana",
		OwnerEmail:    "Dana@Bakery.example",
		OwnerPassword: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PartnerStatusActive, partner.Status)
	assert.Equal(t, domain.RolePartnerOwner, owner.Role)
	require.NotNil(t, owner.PartnerID)
	assert.Equal(t, partner.ID, *owner.PartnerID)
	assert.Equal(t, "dana@bakery.example", owner.Email)
	assert.True(t, owner.IsPartnerAffiliated())
	assert.Equal(t, int64(1), h.store.impactCounts()[domain.ImpactPartnerJoined])
}

func TestRegisterPartnerRejectsDuplicateOwnerEmail(t *testing.T) {
	h := newHarness()
	registerPartner(t, h, "Corner Bakery", "owner@bakery.example")

	_, _, err := h.partners.Register(context.Background(), RegisterPartnerInput{
		Name:          "Other Bakery",
		Address:       "9 Side Street",
		OwnerName:     "Sam",
		OwnerEmail:    "owner@bakery.example",
		OwnerPassword: "another-pass",
	})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestRegisterPartnerValidation(t *testing.T) {
	h := newHarness()

	_, _, err := h.partners.Register(context.Background(), RegisterPartnerInput{
		Name: "", Address: "somewhere", OwnerName: "A", OwnerEmail: "a@b.c", OwnerPassword: "x",
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAddStaff(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	partner, _ := registerPartner(t, h, "Corner Bakery", "owner@bakery.example")

	staff, err := h.partners.AddStaff(ctx, partner.ID, "Kim", "kim@bakery.example", "staff-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePartnerStaff, staff.Role)
	require.NotNil(t, staff.PartnerID)
	assert.Equal(t, partner.ID, *staff.PartnerID)

	_, err = h.partners.AddStaff(ctx, partner.ID, "Kim Again", "kim@bakery.example", "staff-pass")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	_, err = h.partners.AddStaff(ctx, "missing-partner", "Lee", "lee@bakery.example", "staff-pass")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAddStaffRejectsSuspendedPartner(t *testing.T) {
	h := newHarness()
	partner, _ := registerPartner(t, h, "Corner Bakery", "owner@bakery.example")

	h.store.mu.Lock()
	stored := h.store.partners[partner.ID]
	stored.Status = domain.PartnerStatusSuspended
	h.store.partners[partner.ID] = stored
	h.store.mu.Unlock()

	_, err := h.partners.AddStaff(context.Background(), partner.ID, "Kim", "kim@bakery.example", "staff-pass")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}
