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

// maxCodeAttempts bounds regeneration when a generated code collides with a
// persisted one. The DB unique constraint remains the source of truth.
const maxCodeAttempts = 5

// VoucherService governs voucher issuance, lookup, redemption and revocation.
// Redemption is the concurrency-critical path: the voucher row is locked for
// the duration of the transaction so two simultaneous redemption attempts
// serialize into exactly one success.
type VoucherService struct {
	db          repository.DB
	vouchers    repository.VoucherRepository
	redemptions repository.RedemptionRepository
	requests    repository.RequestRepository
	impact      repository.ImpactRepository
	dispatcher  events.Dispatcher
	cache       SummaryCache
}

// VoucherDependencies bundles requirements for the voucher service.
type VoucherDependencies struct {
	DB             repository.DB
	VoucherRepo    repository.VoucherRepository
	RedemptionRepo repository.RedemptionRepository
	RequestRepo    repository.RequestRepository
	ImpactRepo     repository.ImpactRepository
	Dispatcher     events.Dispatcher
	Cache          SummaryCache
}

// NewVoucherService constructs the service.
func NewVoucherService(deps VoucherDependencies) *VoucherService {
	return &VoucherService{
		db:          deps.DB,
		vouchers:    deps.VoucherRepo,
		redemptions: deps.RedemptionRepo,
		requests:    deps.RequestRepo,
		impact:      deps.ImpactRepo,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
	}
}

// IssueInput describes voucher issuance parameters.
type IssueInput struct {
	RequestID       string
	ValueMinorUnits int64
	IssuerID        string
	ExpiresInDays   *int
}

// Issue creates an ACTIVE voucher against an APPROVED VOUCHER-type request,
// marks the request FULFILLED and appends a MEAL_FUNDED ledger event, all in
// one transaction.
func (s *VoucherService) Issue(ctx context.Context, input IssueInput) (*domain.Voucher, error) {
	if input.ValueMinorUnits <= 0 {
		return nil, apperrors.NewValidationError("value must be positive", map[string]any{"value_minor_units": input.ValueMinorUnits})
	}
	if input.ExpiresInDays != nil && *input.ExpiresInDays <= 0 {
		return nil, apperrors.NewValidationError("expires_in_days must be positive", nil)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	request, err := s.requests.GetByIDForUpdate(ctx, tx, input.RequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("support request", map[string]any{"request_id": input.RequestID})
		}
		return nil, apperrors.MapError(err)
	}
	if request.Status != domain.RequestStatusApproved || request.Type != domain.RequestTypeVoucher {
		return nil, apperrors.NewInvalidTransition("request is not an approved voucher request",
			map[string]any{"current_status": request.Status, "type": request.Type})
	}

	code, qrToken, err := s.uniqueVoucherIdentifiers(ctx, tx)
	if err != nil {
		return nil, err
	}

	voucher := &domain.Voucher{
		Code:            code,
		QRToken:         qrToken,
		ValueMinorUnits: input.ValueMinorUnits,
		BeneficiaryID:   request.BeneficiaryID,
		IssuedBy:        input.IssuerID,
		Status:          domain.VoucherStatusActive,
	}
	if input.ExpiresInDays != nil {
		expiresAt := time.Now().AddDate(0, 0, *input.ExpiresInDays)
		voucher.ExpiresAt = &expiresAt
	}

	if err := s.vouchers.Create(ctx, tx, voucher); err != nil {
		if repository.IsUniqueViolation(err) {
			// lost a race on the uniqueness probe; caller may retry
			return nil, apperrors.NewCodeGenerationExhausted(err)
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.requests.MarkFulfilled(ctx, tx, request.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	event := &domain.ImpactEvent{
		EventType: domain.ImpactMealFunded,
		RelatedID: &voucher.ID,
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
		Type:      events.EventVoucherIssued,
		SubjectID: voucher.ID,
		Actor:     events.Actor{UserID: input.IssuerID, Role: domain.RoleAdmin},
		Payload: events.VoucherIssuedPayload{
			RequestID:       request.ID,
			BeneficiaryID:   voucher.BeneficiaryID,
			ValueMinorUnits: voucher.ValueMinorUnits,
			Code:            voucher.Code,
			ExpiresAt:       voucher.ExpiresAt,
		},
	})
	return voucher, nil
}

func (s *VoucherService) uniqueVoucherIdentifiers(ctx context.Context, q repository.Querier) (string, string, error) {
	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return "", "", apperrors.NewCodeGenerationExhausted(nil)
		}
		candidate := codes.NewVoucherCode()
		inUse, err := s.vouchers.CodeInUse(ctx, q, candidate)
		if err != nil {
			return "", "", apperrors.MapError(err)
		}
		if !inUse {
			code = candidate
			break
		}
	}
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return "", "", apperrors.NewCodeGenerationExhausted(nil)
		}
		candidate := codes.NewQRToken()
		inUse, err := s.vouchers.QRTokenInUse(ctx, q, candidate)
		if err != nil {
			return "", "", apperrors.MapError(err)
		}
		if !inUse {
			return code, candidate, nil
		}
	}
}

// Lookup resolves a voucher by its human-readable code.
func (s *VoucherService) Lookup(ctx context.Context, code string) (*domain.Voucher, error) {
	voucher, err := s.vouchers.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("voucher", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return voucher, nil
}

// LookupByQRToken resolves a voucher by its QR token.
func (s *VoucherService) LookupByQRToken(ctx context.Context, token string) (*domain.Voucher, error) {
	voucher, err := s.vouchers.GetByQRToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("voucher", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return voucher, nil
}

// RedeemInput describes a redemption attempt at a partner counter. Exactly
// one of Code or QRToken identifies the voucher.
type RedeemInput struct {
	Code            string
	QRToken         string
	PartnerID       string
	StaffID         string
	MealDescription string
}

// Redeem performs the one-time redemption of a voucher. The row lock taken
// before the status check serializes concurrent attempts: the loser of the
// race observes REDEEMED and fails with VOUCHER_NOT_ACTIVE. An expired
// voucher fails the attempt but is left ACTIVE (lazy expiry).
func (s *VoucherService) Redeem(ctx context.Context, input RedeemInput) (*domain.Voucher, *domain.VoucherRedemption, error) {
	if input.Code == "" && input.QRToken == "" {
		return nil, nil, apperrors.NewValidationError("code or qr_token required", nil)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var voucher *domain.Voucher
	if input.Code != "" {
		voucher, err = s.vouchers.GetByCodeForUpdate(ctx, tx, strings.TrimSpace(input.Code))
	} else {
		voucher, err = s.vouchers.GetByQRTokenForUpdate(ctx, tx, strings.TrimSpace(input.QRToken))
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("voucher", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}

	if voucher.Status != domain.VoucherStatusActive {
		return nil, nil, apperrors.NewVoucherNotActive(string(voucher.Status))
	}
	if voucher.ExpiredAt(time.Now()) {
		return nil, nil, apperrors.NewVoucherExpired()
	}

	if err := s.vouchers.SetStatus(ctx, tx, voucher.ID, domain.VoucherStatusActive, domain.VoucherStatusRedeemed); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	redemption := &domain.VoucherRedemption{
		VoucherID:       voucher.ID,
		PartnerID:       input.PartnerID,
		BeneficiaryID:   voucher.BeneficiaryID,
		StaffID:         input.StaffID,
		ValueMinorUnits: voucher.ValueMinorUnits,
	}
	if trimmed := strings.TrimSpace(input.MealDescription); trimmed != "" {
		redemption.MealDescription = &trimmed
	}
	if err := s.redemptions.Create(ctx, tx, redemption); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	event := &domain.ImpactEvent{
		EventType: domain.ImpactMealServed,
		RelatedID: &voucher.ID,
		Count:     1,
	}
	if err := s.impact.Append(ctx, tx, event); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}

	voucher.Status = domain.VoucherStatusRedeemed

	invalidateSummary(ctx, s.cache)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventVoucherRedeemed,
		SubjectID: voucher.ID,
		Actor:     events.Actor{UserID: input.StaffID, Role: domain.RolePartnerStaff},
		Payload: events.VoucherRedeemedPayload{
			RedemptionID:    redemption.ID,
			PartnerID:       input.PartnerID,
			BeneficiaryID:   voucher.BeneficiaryID,
			ValueMinorUnits: redemption.ValueMinorUnits,
		},
	})
	return voucher, redemption, nil
}

// Revoke transitions an ACTIVE voucher to REVOKED. No ledger event.
func (s *VoucherService) Revoke(ctx context.Context, voucherID, adminID string) (*domain.Voucher, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	voucher, err := s.vouchers.GetByIDForUpdate(ctx, tx, voucherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("voucher", map[string]any{"voucher_id": voucherID})
		}
		return nil, apperrors.MapError(err)
	}
	if voucher.Status != domain.VoucherStatusActive {
		return nil, apperrors.NewInvalidTransition("only ACTIVE vouchers can be revoked",
			map[string]any{"current_status": voucher.Status})
	}
	if err := s.vouchers.SetStatus(ctx, tx, voucher.ID, domain.VoucherStatusActive, domain.VoucherStatusRevoked); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	voucher.Status = domain.VoucherStatusRevoked
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventVoucherRevoked,
		SubjectID: voucher.ID,
		Actor:     events.Actor{UserID: adminID, Role: domain.RoleAdmin},
		Payload:   events.VoucherRevokedPayload{AdminID: adminID},
	})
	return voucher, nil
}

// ListForBeneficiary returns the beneficiary's own vouchers.
func (s *VoucherService) ListForBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.Voucher, error) {
	vouchers, err := s.vouchers.ListByBeneficiary(ctx, beneficiaryID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return vouchers, nil
}

// ListRedemptionsForPartner returns a partner's redemption history.
func (s *VoucherService) ListRedemptionsForPartner(ctx context.Context, partnerID string, limit, offset int) ([]domain.VoucherRedemption, error) {
	redemptions, err := s.redemptions.ListByPartner(ctx, partnerID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return redemptions, nil
}
