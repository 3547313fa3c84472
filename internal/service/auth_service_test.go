package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecoeats/internal/config"
	"github.com/spec-kit/ecoeats/internal/domain"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

func newAuthHarness() (*AuthService, *memStore) {
	store := newMemStore()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, &fakeUserRepo{store: store}), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthHarness()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Ana", "Ana@Example.com", "pass-word", domain.RoleBeneficiary)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, domain.RoleBeneficiary, user.Role)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "pass-word", user.PasswordHash)

	loggedIn, token, exp, err := svc.Login(ctx, "ana@example.com", "pass-word")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, domain.RoleBeneficiary, claims.Role)
}

func TestRegisterRejectsPrivilegedRoles(t *testing.T) {
	svc, _ := newAuthHarness()
	ctx := context.Background()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RolePartnerOwner, domain.RolePartnerStaff} {
		_, _, _, err := svc.Register(ctx, "Mal", "mal@example.com", "pass", role)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "role %s", role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthHarness()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Ana", "ana@example.com", "pass-word", domain.RoleDonor)
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Ana Again", "ana@example.com", "other-pass", domain.RoleDonor)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginFailures(t *testing.T) {
	svc, store := newAuthHarness()
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Ana", "ana@example.com", "pass-word", domain.RoleBeneficiary)
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "pass-word")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	store.mu.Lock()
	stored := store.users[user.ID]
	stored.Status = domain.UserStatusSuspended
	store.users[user.ID] = stored
	store.mu.Unlock()

	_, _, _, err = svc.Login(ctx, "ana@example.com", "pass-word")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
