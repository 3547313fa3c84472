package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/domain"
	"github.com/spec-kit/ecoeats/internal/events"
	"github.com/spec-kit/ecoeats/internal/repository"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// RequestService governs the support request state machine and the derived
// food-pack eligibility gate.
type RequestService struct {
	db         repository.DB
	requests   repository.RequestRepository
	claims     repository.SurplusRepository
	impact     repository.ImpactRepository
	dispatcher events.Dispatcher
	cache      SummaryCache
}

// RequestDependencies bundles requirements for the request service.
type RequestDependencies struct {
	DB          repository.DB
	RequestRepo repository.RequestRepository
	SurplusRepo repository.SurplusRepository
	ImpactRepo  repository.ImpactRepository
	Dispatcher  events.Dispatcher
	Cache       SummaryCache
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		db:         deps.DB,
		requests:   deps.RequestRepo,
		claims:     deps.SurplusRepo,
		impact:     deps.ImpactRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// Submit creates a request in PENDING for the beneficiary.
func (s *RequestService) Submit(ctx context.Context, beneficiaryID string, reqType domain.RequestType, urgency domain.Urgency, message string) (*domain.SupportRequest, error) {
	if !domain.ValidRequestType(reqType) {
		return nil, apperrors.NewValidationError("type must be VOUCHER or FOOD_PACK", map[string]any{"type": reqType})
	}
	if !domain.ValidUrgency(urgency) {
		return nil, apperrors.NewValidationError("urgency must be LOW, MED or HIGH", map[string]any{"urgency": urgency})
	}

	request := &domain.SupportRequest{
		BeneficiaryID: beneficiaryID,
		Type:          reqType,
		Urgency:       urgency,
		Status:        domain.RequestStatusPending,
	}
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		request.Message = &trimmed
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventRequestSubmitted,
		SubjectID: request.ID,
		Actor:     events.Actor{UserID: beneficiaryID, Role: domain.RoleBeneficiary},
		Payload: events.RequestSubmittedPayload{
			Type:    request.Type,
			Urgency: request.Urgency,
		},
	})
	return request, nil
}

// Review decides a PENDING request. Re-review is rejected, not silently
// accepted; this closes the double-approval race. On APPROVED the
// REQUEST_APPROVED ledger event is appended in the same transaction.
func (s *RequestService) Review(ctx context.Context, requestID string, decision domain.RequestStatus, reviewerID string) (*domain.SupportRequest, error) {
	if decision != domain.RequestStatusApproved && decision != domain.RequestStatusDeclined {
		return nil, apperrors.NewValidationError("decision must be APPROVED or DECLINED", map[string]any{"decision": decision})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	request, err := s.requests.GetByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("support request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if request.Status != domain.RequestStatusPending {
		return nil, apperrors.NewInvalidTransition("request already reviewed",
			map[string]any{"current_status": request.Status})
	}

	now := time.Now()
	if err := s.requests.SetReviewed(ctx, tx, request.ID, decision, reviewerID, now); err != nil {
		return nil, apperrors.MapError(err)
	}
	if decision == domain.RequestStatusApproved {
		event := &domain.ImpactEvent{
			EventType: domain.ImpactRequestApproved,
			RelatedID: &request.ID,
			Count:     1,
		}
		if err := s.impact.Append(ctx, tx, event); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	request.Status = decision
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now

	invalidateSummary(ctx, s.cache)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventRequestReviewed,
		SubjectID: request.ID,
		Actor:     events.Actor{UserID: reviewerID, Role: domain.RoleAdmin},
		Payload: events.RequestReviewedPayload{
			Decision:   decision,
			ReviewerID: reviewerID,
		},
	})
	return request, nil
}

// EligibilityForFoodPack recomputes the gate from current counts on every
// call; claims can race, so this is never cached.
func (s *RequestService) EligibilityForFoodPack(ctx context.Context, beneficiaryID string) (*domain.FoodPackEligibility, error) {
	return s.eligibility(ctx, nil, beneficiaryID)
}

// eligibility is the transaction-scoped variant used inside the claim
// critical section.
func (s *RequestService) eligibility(ctx context.Context, q repository.Querier, beneficiaryID string) (*domain.FoodPackEligibility, error) {
	approved, err := s.requests.CountApprovedFoodPack(ctx, q, beneficiaryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	used, err := s.claims.CountActiveClaimsByBeneficiary(ctx, q, beneficiaryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &domain.FoodPackEligibility{
		ApprovedCount: approved,
		UsedCount:     used,
		CanClaim:      approved > used,
	}, nil
}

// GetForBeneficiary fetches a request ensuring ownership.
func (s *RequestService) GetForBeneficiary(ctx context.Context, beneficiaryID, requestID string) (*domain.SupportRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("support request", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if request.BeneficiaryID != beneficiaryID {
		return nil, apperrors.NewNotFound("support request", nil)
	}
	return request, nil
}

// ListForBeneficiary returns the beneficiary's own requests.
func (s *RequestService) ListForBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.SupportRequest, error) {
	requests, err := s.requests.ListByBeneficiary(ctx, beneficiaryID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// ListPending returns the admin review queue, oldest first.
func (s *RequestService) ListPending(ctx context.Context, limit, offset int) ([]domain.SupportRequest, error) {
	requests, err := s.requests.ListByStatus(ctx, domain.RequestStatusPending, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}
