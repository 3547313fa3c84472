package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ecoeats/internal/domain"
	"github.com/spec-kit/ecoeats/internal/events"
	"github.com/spec-kit/ecoeats/internal/repository"
)

// The fakes below back the service tests with an in-memory store that keeps
// the locking behavior of the real repositories: ForUpdate methods block on a
// per-row mutex that is released when the owning transaction commits or rolls
// back. Concurrency tests therefore race real goroutines through the same
// critical sections the Postgres row locks serialize in production.

type fakeTx struct {
	pgx.Tx
	mu        sync.Mutex
	released  bool
	onRelease []func()
}

func (t *fakeTx) Commit(context.Context) error {
	t.release()
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.release()
	return nil
}

func (t *fakeTx) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	for i := len(t.onRelease) - 1; i >= 0; i-- {
		t.onRelease[i]()
	}
	t.onRelease = nil
}

func (t *fakeTx) addRelease(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRelease = append(t.onRelease, f)
}

type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("services must not run statements outside a repository")
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("services must not run statements outside a repository")
}

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("services must not run statements outside a repository")
}

func txOf(q repository.Querier) *fakeTx {
	tx, _ := q.(*fakeTx)
	return tx
}

type memStore struct {
	mu          sync.Mutex
	users       map[string]domain.User
	partners    map[string]domain.Partner
	requests    map[string]domain.SupportRequest
	vouchers    map[string]domain.Voucher
	redemptions map[string]domain.VoucherRedemption
	listings    map[string]domain.SurplusListing
	claims      map[string]domain.SurplusClaim
	impact      []domain.ImpactEvent
	rowLocks    map[string]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]domain.User),
		partners:    make(map[string]domain.Partner),
		requests:    make(map[string]domain.SupportRequest),
		vouchers:    make(map[string]domain.Voucher),
		redemptions: make(map[string]domain.VoucherRedemption),
		listings:    make(map[string]domain.SurplusListing),
		claims:      make(map[string]domain.SurplusClaim),
		rowLocks:    make(map[string]*sync.Mutex),
	}
}

// lockRow blocks until the row lock is free, then parks the unlock on the
// transaction so it survives until commit/rollback.
func (s *memStore) lockRow(tx *fakeTx, key string) {
	s.mu.Lock()
	m, ok := s.rowLocks[key]
	if !ok {
		m = &sync.Mutex{}
		s.rowLocks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	if tx != nil {
		tx.addRelease(m.Unlock)
	} else {
		m.Unlock()
	}
}

func (s *memStore) impactCounts() map[domain.ImpactEventType]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := make(map[domain.ImpactEventType]int64)
	for _, event := range s.impact {
		sums[event.EventType] += int64(event.Count)
	}
	return sums
}

// --- request repository fake ---

type fakeRequestRepo struct{ store *memStore }

func (r *fakeRequestRepo) Create(_ context.Context, request *domain.SupportRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request.ID = uuid.NewString()
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.store.requests[request.ID] = *request
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.SupportRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, q repository.Querier, id string) (*domain.SupportRequest, error) {
	r.store.lockRow(txOf(q), "request:"+id)
	return r.GetByID(ctx, id)
}

func (r *fakeRequestRepo) ListByBeneficiary(_ context.Context, beneficiaryID string, _, _ int) ([]domain.SupportRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.SupportRequest
	for _, request := range r.store.requests {
		if request.BeneficiaryID == beneficiaryID {
			result = append(result, request)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) ListByStatus(_ context.Context, status domain.RequestStatus, _, _ int) ([]domain.SupportRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.SupportRequest
	for _, request := range r.store.requests {
		if request.Status == status {
			result = append(result, request)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) SetReviewed(_ context.Context, _ repository.Querier, id string, status domain.RequestStatus, reviewerID string, reviewedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok || request.Status != domain.RequestStatusPending {
		return pgx.ErrNoRows
	}
	request.Status = status
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &reviewedAt
	request.UpdatedAt = time.Now()
	r.store.requests[id] = request
	return nil
}

func (r *fakeRequestRepo) MarkFulfilled(_ context.Context, _ repository.Querier, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok || request.Status != domain.RequestStatusApproved {
		return pgx.ErrNoRows
	}
	request.Status = domain.RequestStatusFulfilled
	request.UpdatedAt = time.Now()
	r.store.requests[id] = request
	return nil
}

func (r *fakeRequestRepo) CountApprovedFoodPack(_ context.Context, _ repository.Querier, beneficiaryID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, request := range r.store.requests {
		if request.BeneficiaryID == beneficiaryID && request.Type == domain.RequestTypeFoodPack &&
			(request.Status == domain.RequestStatusApproved || request.Status == domain.RequestStatusFulfilled) {
			count++
		}
	}
	return count, nil
}

// --- voucher repository fake ---

type fakeVoucherRepo struct{ store *memStore }

func (r *fakeVoucherRepo) Create(_ context.Context, _ repository.Querier, voucher *domain.Voucher) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.vouchers {
		if existing.Code == voucher.Code || existing.QRToken == voucher.QRToken {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	voucher.ID = uuid.NewString()
	voucher.CreatedAt = time.Now()
	voucher.UpdatedAt = voucher.CreatedAt
	r.store.vouchers[voucher.ID] = *voucher
	return nil
}

func (r *fakeVoucherRepo) GetByID(_ context.Context, id string) (*domain.Voucher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	voucher, ok := r.store.vouchers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &voucher, nil
}

func (r *fakeVoucherRepo) findBy(match func(domain.Voucher) bool) (*domain.Voucher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, voucher := range r.store.vouchers {
		if match(voucher) {
			v := voucher
			return &v, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeVoucherRepo) GetByCode(_ context.Context, code string) (*domain.Voucher, error) {
	return r.findBy(func(v domain.Voucher) bool { return v.Code == code })
}

func (r *fakeVoucherRepo) GetByQRToken(_ context.Context, token string) (*domain.Voucher, error) {
	return r.findBy(func(v domain.Voucher) bool { return v.QRToken == token })
}

func (r *fakeVoucherRepo) GetByIDForUpdate(ctx context.Context, q repository.Querier, id string) (*domain.Voucher, error) {
	r.store.lockRow(txOf(q), "voucher:"+id)
	return r.GetByID(ctx, id)
}

func (r *fakeVoucherRepo) GetByCodeForUpdate(ctx context.Context, q repository.Querier, code string) (*domain.Voucher, error) {
	voucher, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	r.store.lockRow(txOf(q), "voucher:"+voucher.ID)
	// re-read after acquiring the lock, as the row server-side would be
	return r.GetByID(ctx, voucher.ID)
}

func (r *fakeVoucherRepo) GetByQRTokenForUpdate(ctx context.Context, q repository.Querier, token string) (*domain.Voucher, error) {
	voucher, err := r.GetByQRToken(ctx, token)
	if err != nil {
		return nil, err
	}
	r.store.lockRow(txOf(q), "voucher:"+voucher.ID)
	return r.GetByID(ctx, voucher.ID)
}

func (r *fakeVoucherRepo) ListByBeneficiary(_ context.Context, beneficiaryID string, _, _ int) ([]domain.Voucher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.Voucher
	for _, voucher := range r.store.vouchers {
		if voucher.BeneficiaryID == beneficiaryID {
			result = append(result, voucher)
		}
	}
	return result, nil
}

func (r *fakeVoucherRepo) CodeInUse(_ context.Context, _ repository.Querier, code string) (bool, error) {
	_, err := r.findBy(func(v domain.Voucher) bool { return v.Code == code })
	return err == nil, nil
}

func (r *fakeVoucherRepo) QRTokenInUse(_ context.Context, _ repository.Querier, token string) (bool, error) {
	_, err := r.findBy(func(v domain.Voucher) bool { return v.QRToken == token })
	return err == nil, nil
}

func (r *fakeVoucherRepo) SetStatus(_ context.Context, _ repository.Querier, id string, from, to domain.VoucherStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	voucher, ok := r.store.vouchers[id]
	if !ok || voucher.Status != from {
		return pgx.ErrNoRows
	}
	voucher.Status = to
	voucher.UpdatedAt = time.Now()
	r.store.vouchers[id] = voucher
	return nil
}

func (r *fakeVoucherRepo) CountByStatus(_ context.Context, status domain.VoucherStatus) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, voucher := range r.store.vouchers {
		if voucher.Status == status {
			count++
		}
	}
	return count, nil
}

// --- redemption repository fake ---

type fakeRedemptionRepo struct{ store *memStore }

func (r *fakeRedemptionRepo) Create(_ context.Context, _ repository.Querier, redemption *domain.VoucherRedemption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.redemptions {
		if existing.VoucherID == redemption.VoucherID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	redemption.ID = uuid.NewString()
	redemption.RedeemedAt = time.Now()
	r.store.redemptions[redemption.ID] = *redemption
	return nil
}

func (r *fakeRedemptionRepo) GetByVoucherID(_ context.Context, voucherID string) (*domain.VoucherRedemption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, redemption := range r.store.redemptions {
		if redemption.VoucherID == voucherID {
			rec := redemption
			return &rec, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRedemptionRepo) ListByPartner(_ context.Context, partnerID string, _, _ int) ([]domain.VoucherRedemption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.VoucherRedemption
	for _, redemption := range r.store.redemptions {
		if redemption.PartnerID == partnerID {
			result = append(result, redemption)
		}
	}
	return result, nil
}

// --- surplus repository fake ---

type fakeSurplusRepo struct{ store *memStore }

func (r *fakeSurplusRepo) CreateListing(_ context.Context, listing *domain.SurplusListing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing.ID = uuid.NewString()
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	r.store.listings[listing.ID] = *listing
	return nil
}

func (r *fakeSurplusRepo) GetListingByID(_ context.Context, id string) (*domain.SurplusListing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing, ok := r.store.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &listing, nil
}

func (r *fakeSurplusRepo) GetListingByIDForUpdate(ctx context.Context, q repository.Querier, id string) (*domain.SurplusListing, error) {
	r.store.lockRow(txOf(q), "listing:"+id)
	return r.GetListingByID(ctx, id)
}

func (r *fakeSurplusRepo) ListAvailable(_ context.Context, now time.Time, _, _ int) ([]domain.ListingWithRemaining, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.ListingWithRemaining
	for _, listing := range r.store.listings {
		if listing.Status != domain.ListingStatusActive || listing.PickupDeadline.Before(now) {
			continue
		}
		claimed := 0
		for _, claim := range r.store.claims {
			if claim.ListingID == listing.ID && claim.Status != domain.ClaimStatusCancelled {
				claimed++
			}
		}
		result = append(result, domain.ListingWithRemaining{
			SurplusListing: listing,
			Remaining:      listing.QuantityAvailable - claimed,
		})
	}
	return result, nil
}

func (r *fakeSurplusRepo) ListByPartner(_ context.Context, partnerID string, _, _ int) ([]domain.SurplusListing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.SurplusListing
	for _, listing := range r.store.listings {
		if listing.PartnerID == partnerID {
			result = append(result, listing)
		}
	}
	return result, nil
}

func (r *fakeSurplusRepo) SetListingStatus(_ context.Context, _ repository.Querier, id string, from, to domain.ListingStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing, ok := r.store.listings[id]
	if !ok || listing.Status != from {
		return pgx.ErrNoRows
	}
	listing.Status = to
	listing.UpdatedAt = time.Now()
	r.store.listings[id] = listing
	return nil
}

func (r *fakeSurplusRepo) CountListingsByStatus(_ context.Context, status domain.ListingStatus) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, listing := range r.store.listings {
		if listing.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeSurplusRepo) CreateClaim(_ context.Context, _ repository.Querier, claim *domain.SurplusClaim) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.claims {
		if existing.PickupCode == claim.PickupCode {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	claim.ID = uuid.NewString()
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = claim.CreatedAt
	r.store.claims[claim.ID] = *claim
	return nil
}

func (r *fakeSurplusRepo) GetClaimByID(_ context.Context, id string) (*domain.SurplusClaim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	claim, ok := r.store.claims[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &claim, nil
}

func (r *fakeSurplusRepo) GetClaimByIDForUpdate(ctx context.Context, q repository.Querier, id string) (*domain.SurplusClaim, error) {
	r.store.lockRow(txOf(q), "claim:"+id)
	return r.GetClaimByID(ctx, id)
}

func (r *fakeSurplusRepo) GetClaimByPickupCodeForUpdate(ctx context.Context, q repository.Querier, pickupCode, partnerID string) (*domain.SurplusClaim, error) {
	r.store.mu.Lock()
	var found *domain.SurplusClaim
	for _, claim := range r.store.claims {
		listing, ok := r.store.listings[claim.ListingID]
		if claim.PickupCode == pickupCode && ok && listing.PartnerID == partnerID {
			c := claim
			found = &c
			break
		}
	}
	r.store.mu.Unlock()
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	r.store.lockRow(txOf(q), "claim:"+found.ID)
	return r.GetClaimByID(ctx, found.ID)
}

func (r *fakeSurplusRepo) ListClaimsByBeneficiary(_ context.Context, beneficiaryID string, _, _ int) ([]domain.SurplusClaim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.SurplusClaim
	for _, claim := range r.store.claims {
		if claim.BeneficiaryID == beneficiaryID {
			result = append(result, claim)
		}
	}
	return result, nil
}

func (r *fakeSurplusRepo) SetClaimStatus(_ context.Context, _ repository.Querier, id string, from, to domain.ClaimStatus, confirmedBy *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	claim, ok := r.store.claims[id]
	if !ok || claim.Status != from {
		return pgx.ErrNoRows
	}
	claim.Status = to
	if confirmedBy != nil {
		claim.ConfirmedBy = confirmedBy
	}
	claim.UpdatedAt = time.Now()
	r.store.claims[id] = claim
	return nil
}

func (r *fakeSurplusRepo) PickupCodeInUse(_ context.Context, _ repository.Querier, code string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, claim := range r.store.claims {
		if claim.PickupCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSurplusRepo) CountActiveClaims(_ context.Context, _ repository.Querier, listingID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, claim := range r.store.claims {
		if claim.ListingID == listingID && claim.Status != domain.ClaimStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (r *fakeSurplusRepo) CountActiveClaimsByUser(_ context.Context, _ repository.Querier, listingID, beneficiaryID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, claim := range r.store.claims {
		if claim.ListingID == listingID && claim.BeneficiaryID == beneficiaryID && claim.Status != domain.ClaimStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (r *fakeSurplusRepo) CountActiveClaimsByBeneficiary(_ context.Context, _ repository.Querier, beneficiaryID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, claim := range r.store.claims {
		if claim.BeneficiaryID == beneficiaryID && claim.Status != domain.ClaimStatusCancelled {
			count++
		}
	}
	return count, nil
}

// --- impact repository fake ---

type fakeImpactRepo struct{ store *memStore }

func (r *fakeImpactRepo) Append(_ context.Context, _ repository.Querier, event *domain.ImpactEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	r.store.impact = append(r.store.impact, *event)
	return nil
}

func (r *fakeImpactRepo) SumByType(context.Context) (map[domain.ImpactEventType]int64, error) {
	return r.store.impactCounts(), nil
}

func (r *fakeImpactRepo) ListRecent(_ context.Context, _ int) ([]domain.ImpactEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]domain.ImpactEvent(nil), r.store.impact...), nil
}

// --- user repository fake ---

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(_ context.Context, _ repository.Querier, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// --- partner repository fake ---

type fakePartnerRepo struct{ store *memStore }

func (r *fakePartnerRepo) Create(_ context.Context, _ repository.Querier, partner *domain.Partner) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	partner.ID = uuid.NewString()
	partner.CreatedAt = time.Now()
	partner.UpdatedAt = partner.CreatedAt
	r.store.partners[partner.ID] = *partner
	return nil
}

func (r *fakePartnerRepo) GetByID(_ context.Context, id string) (*domain.Partner, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	partner, ok := r.store.partners[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &partner, nil
}

func (r *fakePartnerRepo) Count(context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.partners)), nil
}

// --- harness ---

type harness struct {
	store      *memStore
	dispatcher events.Dispatcher
	requests   *RequestService
	vouchers   *VoucherService
	surplus    *SurplusService
	partners   *PartnerService
}

func newHarness() *harness {
	store := newMemStore()
	db := fakeDB{}
	dispatcher := events.NewInMemoryDispatcher()

	requestRepo := &fakeRequestRepo{store: store}
	voucherRepo := &fakeVoucherRepo{store: store}
	redemptionRepo := &fakeRedemptionRepo{store: store}
	surplusRepo := &fakeSurplusRepo{store: store}
	impactRepo := &fakeImpactRepo{store: store}
	userRepo := &fakeUserRepo{store: store}
	partnerRepo := &fakePartnerRepo{store: store}

	requests := NewRequestService(RequestDependencies{
		DB:          db,
		RequestRepo: requestRepo,
		SurplusRepo: surplusRepo,
		ImpactRepo:  impactRepo,
		Dispatcher:  dispatcher,
	})
	vouchers := NewVoucherService(VoucherDependencies{
		DB:             db,
		VoucherRepo:    voucherRepo,
		RedemptionRepo: redemptionRepo,
		RequestRepo:    requestRepo,
		ImpactRepo:     impactRepo,
		Dispatcher:     dispatcher,
	})
	surplus := NewSurplusService(SurplusDependencies{
		DB:             db,
		SurplusRepo:    surplusRepo,
		RequestService: requests,
		ImpactRepo:     impactRepo,
		Dispatcher:     dispatcher,
	})
	partners := NewPartnerService(PartnerDependencies{
		DB:          db,
		PartnerRepo: partnerRepo,
		UserRepo:    userRepo,
		ImpactRepo:  impactRepo,
		Dispatcher:  dispatcher,
		BcryptCost:  4,
	})

	return &harness{
		store:      store,
		dispatcher: dispatcher,
		requests:   requests,
		vouchers:   vouchers,
		surplus:    surplus,
		partners:   partners,
	}
}

func futureDeadline() time.Time {
	return time.Now().Add(4 * time.Hour)
}

// seedApprovedRequest inserts an already-reviewed request straight into the
// store, bypassing the admin flow.
func (h *harness) seedApprovedRequest(beneficiaryID string, reqType domain.RequestType) *domain.SupportRequest {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	reviewer := "admin-1"
	now := time.Now()
	request := domain.SupportRequest{
		ID:            uuid.NewString(),
		BeneficiaryID: beneficiaryID,
		Type:          reqType,
		Urgency:       domain.UrgencyMed,
		Status:        domain.RequestStatusApproved,
		ReviewedBy:    &reviewer,
		ReviewedAt:    &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	h.store.requests[request.ID] = request
	return &request
}

func (h *harness) seedActiveListing(partnerID string, quantity, claimLimit int, deadline time.Time) *domain.SurplusListing {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	now := time.Now()
	listing := domain.SurplusListing{
		ID:                uuid.NewString(),
		PartnerID:         partnerID,
		Title:             "end of day bread",
		QuantityAvailable: quantity,
		ClaimLimitPerUser: claimLimit,
		PickupDeadline:    deadline,
		Status:            domain.ListingStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	h.store.listings[listing.ID] = listing
	return &listing
}
