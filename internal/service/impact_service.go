package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ecoeats/internal/domain"
	"github.com/spec-kit/ecoeats/internal/repository"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

const summaryCacheKey = "ecoeats:impact:summary"

// ImpactService owns the append-only impact ledger and the derived summary.
// The summary is recomputable at any time purely from the event log plus live
// entity-status counts; the Redis cache is a read-side shortcut that every
// ledger append invalidates.
type ImpactService struct {
	impact   repository.ImpactRepository
	vouchers repository.VoucherRepository
	surplus  repository.SurplusRepository
	partners repository.PartnerRepository
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// ImpactDependencies bundles requirements for the impact service.
type ImpactDependencies struct {
	ImpactRepo  repository.ImpactRepository
	VoucherRepo repository.VoucherRepository
	SurplusRepo repository.SurplusRepository
	PartnerRepo repository.PartnerRepository
	Redis       *redis.Client
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewImpactService constructs the service.
func NewImpactService(deps ImpactDependencies) *ImpactService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImpactService{
		impact:   deps.ImpactRepo,
		vouchers: deps.VoucherRepo,
		surplus:  deps.SurplusRepo,
		partners: deps.PartnerRepo,
		redis:    deps.Redis,
		cacheTTL: deps.CacheTTL,
		logger:   logger,
	}
}

// Record appends a fact to the ledger. The only rejection is a malformed
// event type; the log itself never refuses an append.
func (s *ImpactService) Record(ctx context.Context, eventType domain.ImpactEventType, relatedID *string, count int) (*domain.ImpactEvent, error) {
	if !domain.ValidImpactEventType(eventType) {
		return nil, apperrors.NewValidationError("unknown impact event type", map[string]any{"event_type": eventType})
	}
	if count <= 0 {
		count = 1
	}
	event := &domain.ImpactEvent{
		EventType: eventType,
		RelatedID: relatedID,
		Count:     count,
	}
	if err := s.impact.Append(ctx, nil, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.Invalidate(ctx)
	return event, nil
}

// Summarize reduces the ledger (sum of count grouped by type) and adds live
// entity-status counts for the reporting views.
func (s *ImpactService) Summarize(ctx context.Context) (*domain.ImpactSummary, error) {
	if cached := s.cachedSummary(ctx); cached != nil {
		return cached, nil
	}

	sums, err := s.impact.SumByType(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	activeVouchers, err := s.vouchers.CountByStatus(ctx, domain.VoucherStatusActive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	activeListings, err := s.surplus.CountListingsByStatus(ctx, domain.ListingStatusActive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	totalPartners, err := s.partners.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summary := &domain.ImpactSummary{
		MealsFunded:      sums[domain.ImpactMealFunded],
		MealsServed:      sums[domain.ImpactMealServed],
		PacksClaimed:     sums[domain.ImpactPackClaimed],
		PacksPickedUp:    sums[domain.ImpactPackPickedUp],
		RequestsApproved: sums[domain.ImpactRequestApproved],
		PartnersJoined:   sums[domain.ImpactPartnerJoined],
		ActiveVouchers:   activeVouchers,
		ActiveListings:   activeListings,
		TotalPartners:    totalPartners,
		GeneratedAt:      time.Now(),
	}
	s.storeSummary(ctx, summary)
	return summary, nil
}

// Invalidate drops the cached summary; called after every ledger append so
// reads stay consistent with the log.
func (s *ImpactService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, summaryCacheKey).Err(); err != nil {
		s.logger.Warn("impact summary cache invalidation failed", zap.Error(err))
	}
}

func (s *ImpactService) cachedSummary(ctx context.Context) *domain.ImpactSummary {
	if s.redis == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.redis.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var summary domain.ImpactSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *ImpactService) storeSummary(ctx context.Context, summary *domain.ImpactSummary) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, summaryCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("impact summary cache store failed", zap.Error(err))
	}
}
