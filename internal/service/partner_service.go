package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/auth"
	"github.com/spec-kit/ecoeats/internal/domain"
	"github.com/spec-kit/ecoeats/internal/events"
	"github.com/spec-kit/ecoeats/internal/repository"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// PartnerService handles partner onboarding and staff management.
type PartnerService struct {
	db         repository.DB
	partners   repository.PartnerRepository
	users      repository.UserRepository
	impact     repository.ImpactRepository
	dispatcher events.Dispatcher
	cache      SummaryCache
	bcryptCost int
}

// PartnerDependencies bundles requirements for the partner service.
type PartnerDependencies struct {
	DB          repository.DB
	PartnerRepo repository.PartnerRepository
	UserRepo    repository.UserRepository
	ImpactRepo  repository.ImpactRepository
	Dispatcher  events.Dispatcher
	Cache       SummaryCache
	BcryptCost  int
}

// NewPartnerService constructs the service.
func NewPartnerService(deps PartnerDependencies) *PartnerService {
	return &PartnerService{
		db:         deps.DB,
		partners:   deps.PartnerRepo,
		users:      deps.UserRepo,
		impact:     deps.ImpactRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		bcryptCost: deps.BcryptCost,
	}
}

// RegisterPartnerInput carries the onboarding payload: the business plus its
// owner account, created together.
type RegisterPartnerInput struct {
	Name          string
	Address       string
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string
}

// Register creates the partner, its owner account and the PARTNER_JOINED
// ledger entry in one transaction. A half-onboarded partner (business without
// an owner login) must never exist.
func (s *PartnerService) Register(ctx context.Context, input RegisterPartnerInput) (*domain.Partner, *domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.OwnerName = strings.TrimSpace(input.OwnerName)
	input.OwnerEmail = strings.ToLower(strings.TrimSpace(input.OwnerEmail))
	if input.Name == "" || input.Address == "" {
		return nil, nil, apperrors.NewValidationError("partner name and address required", nil)
	}
	if input.OwnerName == "" || input.OwnerEmail == "" || input.OwnerPassword == "" {
		return nil, nil, apperrors.NewValidationError("owner name, email and password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, input.OwnerEmail); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.OwnerPassword, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	partner := &domain.Partner{
		Name:    input.Name,
		Address: input.Address,
		Status:  domain.PartnerStatusActive,
	}
	if err := s.partners.Create(ctx, tx, partner); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	owner := &domain.User{
		Name:         input.OwnerName,
		Email:        input.OwnerEmail,
		PasswordHash: hash,
		Role:         domain.RolePartnerOwner,
		PartnerID:    &partner.ID,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, tx, owner); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}

	event := &domain.ImpactEvent{
		EventType: domain.ImpactPartnerJoined,
		RelatedID: &partner.ID,
		Count:     1,
	}
	if err := s.impact.Append(ctx, tx, event); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}

	invalidateSummary(ctx, s.cache)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventPartnerJoined,
		SubjectID: partner.ID,
		Actor:     events.Actor{UserID: owner.ID, Role: domain.RolePartnerOwner},
		Payload: events.PartnerJoinedPayload{
			Name:    partner.Name,
			OwnerID: owner.ID,
		},
	})
	return partner, owner, nil
}

// AddStaff creates a PARTNER_STAFF account under the owner's partner.
func (s *PartnerService) AddStaff(ctx context.Context, partnerID, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email and password required", nil)
	}

	partner, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("partner", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if partner.Status != domain.PartnerStatusActive {
		return nil, apperrors.NewInvalidTransition("partner is suspended",
			map[string]any{"current_status": partner.Status})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	staff := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RolePartnerStaff,
		PartnerID:    &partner.ID,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, nil, staff); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// Get fetches a partner by id.
func (s *PartnerService) Get(ctx context.Context, partnerID string) (*domain.Partner, error) {
	partner, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("partner", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return partner, nil
}
