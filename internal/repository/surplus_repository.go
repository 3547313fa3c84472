package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// SurplusRepository encapsulates listing and claim persistence. The claim
// invariant (sum of non-cancelled claims <= quantity) spans all claims of a
// listing, so the lock granularity is the listing row.
type SurplusRepository interface {
	CreateListing(ctx context.Context, listing *domain.SurplusListing) error
	GetListingByID(ctx context.Context, id string) (*domain.SurplusListing, error)
	GetListingByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.SurplusListing, error)
	ListAvailable(ctx context.Context, now time.Time, limit, offset int) ([]domain.ListingWithRemaining, error)
	ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]domain.SurplusListing, error)
	SetListingStatus(ctx context.Context, q Querier, id string, from, to domain.ListingStatus) error
	CountListingsByStatus(ctx context.Context, status domain.ListingStatus) (int64, error)

	CreateClaim(ctx context.Context, q Querier, claim *domain.SurplusClaim) error
	GetClaimByID(ctx context.Context, id string) (*domain.SurplusClaim, error)
	GetClaimByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.SurplusClaim, error)
	GetClaimByPickupCodeForUpdate(ctx context.Context, q Querier, pickupCode, partnerID string) (*domain.SurplusClaim, error)
	ListClaimsByBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.SurplusClaim, error)
	SetClaimStatus(ctx context.Context, q Querier, id string, from, to domain.ClaimStatus, confirmedBy *string) error
	PickupCodeInUse(ctx context.Context, q Querier, code string) (bool, error)
	CountActiveClaims(ctx context.Context, q Querier, listingID string) (int, error)
	CountActiveClaimsByUser(ctx context.Context, q Querier, listingID, beneficiaryID string) (int, error)
	CountActiveClaimsByBeneficiary(ctx context.Context, q Querier, beneficiaryID string) (int, error)
}

type surplusRepository struct {
	db DB
}

// NewSurplusRepository instantiates the repository.
func NewSurplusRepository(db DB) SurplusRepository {
	return &surplusRepository{db: db}
}

const listingColumns = `id, partner_id, title, description, quantity_available, claim_limit_per_user, pickup_deadline, status, created_at, updated_at`
const claimColumns = `id, listing_id, beneficiary_id, status, pickup_code, confirmed_by, created_at, updated_at`

func (r *surplusRepository) CreateListing(ctx context.Context, listing *domain.SurplusListing) error {
	const query = `
        INSERT INTO surplus_listings (partner_id, title, description, quantity_available, claim_limit_per_user, pickup_deadline, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		listing.PartnerID,
		listing.Title,
		listing.Description,
		listing.QuantityAvailable,
		listing.ClaimLimitPerUser,
		listing.PickupDeadline,
		listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

func (r *surplusRepository) GetListingByID(ctx context.Context, id string) (*domain.SurplusListing, error) {
	const query = `SELECT ` + listingColumns + ` FROM surplus_listings WHERE id=$1`
	return scanListing(r.db.QueryRow(ctx, query, id))
}

func (r *surplusRepository) GetListingByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.SurplusListing, error) {
	const query = `SELECT ` + listingColumns + ` FROM surplus_listings WHERE id=$1 FOR UPDATE`
	return scanListing(q.QueryRow(ctx, query, id))
}

// ListAvailable returns ACTIVE listings whose deadline has not passed, with
// the remaining quantity derived from the live claim counts.
func (r *surplusRepository) ListAvailable(ctx context.Context, now time.Time, limit, offset int) ([]domain.ListingWithRemaining, error) {
	const query = `
        SELECT l.id, l.partner_id, l.title, l.description, l.quantity_available, l.claim_limit_per_user,
               l.pickup_deadline, l.status, l.created_at, l.updated_at,
               l.quantity_available - COUNT(c.id) FILTER (WHERE c.status <> 'CANCELLED') AS remaining
        FROM surplus_listings l
        LEFT JOIN surplus_claims c ON c.listing_id = l.id
        WHERE l.status = 'ACTIVE' AND l.pickup_deadline >= $1
        GROUP BY l.id
        ORDER BY l.pickup_deadline ASC
        LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, now, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ListingWithRemaining
	for rows.Next() {
		var item domain.ListingWithRemaining
		if err := rows.Scan(
			&item.ID,
			&item.PartnerID,
			&item.Title,
			&item.Description,
			&item.QuantityAvailable,
			&item.ClaimLimitPerUser,
			&item.PickupDeadline,
			&item.Status,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Remaining,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *surplusRepository) ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]domain.SurplusListing, error) {
	const query = `
        SELECT ` + listingColumns + ` FROM surplus_listings
        WHERE partner_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, partnerID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SurplusListing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *listing)
	}
	return result, rows.Err()
}

func (r *surplusRepository) SetListingStatus(ctx context.Context, q Querier, id string, from, to domain.ListingStatus) error {
	const query = `UPDATE surplus_listings SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	if q == nil {
		q = r.db
	}
	cmd, err := q.Exec(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *surplusRepository) CountListingsByStatus(ctx context.Context, status domain.ListingStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM surplus_listings WHERE status=$1`, status).Scan(&count)
	return count, err
}

func (r *surplusRepository) CreateClaim(ctx context.Context, q Querier, claim *domain.SurplusClaim) error {
	const query = `
        INSERT INTO surplus_claims (listing_id, beneficiary_id, status, pickup_code)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	if q == nil {
		q = r.db
	}
	return q.QueryRow(ctx, query,
		claim.ListingID,
		claim.BeneficiaryID,
		claim.Status,
		claim.PickupCode,
	).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt)
}

func (r *surplusRepository) GetClaimByID(ctx context.Context, id string) (*domain.SurplusClaim, error) {
	const query = `SELECT ` + claimColumns + ` FROM surplus_claims WHERE id=$1`
	return scanClaim(r.db.QueryRow(ctx, query, id))
}

func (r *surplusRepository) GetClaimByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.SurplusClaim, error) {
	const query = `SELECT ` + claimColumns + ` FROM surplus_claims WHERE id=$1 FOR UPDATE`
	return scanClaim(q.QueryRow(ctx, query, id))
}

// GetClaimByPickupCodeForUpdate scopes the lookup to the given partner's own
// listings; a code belonging to another partner behaves as not found.
func (r *surplusRepository) GetClaimByPickupCodeForUpdate(ctx context.Context, q Querier, pickupCode, partnerID string) (*domain.SurplusClaim, error) {
	const query = `
        SELECT c.id, c.listing_id, c.beneficiary_id, c.status, c.pickup_code, c.confirmed_by, c.created_at, c.updated_at
        FROM surplus_claims c
        JOIN surplus_listings l ON l.id = c.listing_id
        WHERE c.pickup_code=$1 AND l.partner_id=$2
        FOR UPDATE OF c`
	return scanClaim(q.QueryRow(ctx, query, pickupCode, partnerID))
}

func (r *surplusRepository) ListClaimsByBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.SurplusClaim, error) {
	const query = `
        SELECT ` + claimColumns + ` FROM surplus_claims
        WHERE beneficiary_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, beneficiaryID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SurplusClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *claim)
	}
	return result, rows.Err()
}

func (r *surplusRepository) SetClaimStatus(ctx context.Context, q Querier, id string, from, to domain.ClaimStatus, confirmedBy *string) error {
	const query = `
        UPDATE surplus_claims SET status=$1, confirmed_by=COALESCE($2, confirmed_by), updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := q.Exec(ctx, query, to, confirmedBy, id, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *surplusRepository) PickupCodeInUse(ctx context.Context, q Querier, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM surplus_claims WHERE pickup_code=$1)`
	if q == nil {
		q = r.db
	}
	var exists bool
	err := q.QueryRow(ctx, query, code).Scan(&exists)
	return exists, err
}

func (r *surplusRepository) CountActiveClaims(ctx context.Context, q Querier, listingID string) (int, error) {
	const query = `SELECT COUNT(*) FROM surplus_claims WHERE listing_id=$1 AND status <> 'CANCELLED'`
	if q == nil {
		q = r.db
	}
	var count int
	err := q.QueryRow(ctx, query, listingID).Scan(&count)
	return count, err
}

func (r *surplusRepository) CountActiveClaimsByUser(ctx context.Context, q Querier, listingID, beneficiaryID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM surplus_claims
        WHERE listing_id=$1 AND beneficiary_id=$2 AND status <> 'CANCELLED'`
	if q == nil {
		q = r.db
	}
	var count int
	err := q.QueryRow(ctx, query, listingID, beneficiaryID).Scan(&count)
	return count, err
}

// CountActiveClaimsByBeneficiary is the denominator of the eligibility gate:
// every non-cancelled claim consumes one approved food-pack request.
func (r *surplusRepository) CountActiveClaimsByBeneficiary(ctx context.Context, q Querier, beneficiaryID string) (int, error) {
	const query = `SELECT COUNT(*) FROM surplus_claims WHERE beneficiary_id=$1 AND status <> 'CANCELLED'`
	if q == nil {
		q = r.db
	}
	var count int
	err := q.QueryRow(ctx, query, beneficiaryID).Scan(&count)
	return count, err
}

func scanListing(row pgx.Row) (*domain.SurplusListing, error) {
	var listing domain.SurplusListing
	if err := row.Scan(
		&listing.ID,
		&listing.PartnerID,
		&listing.Title,
		&listing.Description,
		&listing.QuantityAvailable,
		&listing.ClaimLimitPerUser,
		&listing.PickupDeadline,
		&listing.Status,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &listing, nil
}

func scanClaim(row pgx.Row) (*domain.SurplusClaim, error) {
	var claim domain.SurplusClaim
	if err := row.Scan(
		&claim.ID,
		&claim.ListingID,
		&claim.BeneficiaryID,
		&claim.Status,
		&claim.PickupCode,
		&claim.ConfirmedBy,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &claim, nil
}
