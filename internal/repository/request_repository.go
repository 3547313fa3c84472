package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// RequestRepository encapsulates support request persistence. Methods taking a
// Querier participate in a transaction owned by the caller.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.SupportRequest) error
	GetByID(ctx context.Context, id string) (*domain.SupportRequest, error)
	GetByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.SupportRequest, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.SupportRequest, error)
	ListByStatus(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.SupportRequest, error)
	SetReviewed(ctx context.Context, q Querier, id string, status domain.RequestStatus, reviewerID string, reviewedAt time.Time) error
	MarkFulfilled(ctx context.Context, q Querier, id string) error
	CountApprovedFoodPack(ctx context.Context, q Querier, beneficiaryID string) (int, error)
}

type requestRepository struct {
	db DB
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(db DB) RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, beneficiary_id, type, urgency, message, status, reviewed_by, reviewed_at, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.SupportRequest) error {
	const query = `
        INSERT INTO support_requests (beneficiary_id, type, urgency, message, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		request.BeneficiaryID,
		request.Type,
		request.Urgency,
		request.Message,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.SupportRequest, error) {
	const query = `SELECT ` + requestColumns + ` FROM support_requests WHERE id=$1`
	return scanRequest(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate takes a row lock so concurrent reviews or issuance against
// the same request serialize on the store.
func (r *requestRepository) GetByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.SupportRequest, error) {
	const query = `SELECT ` + requestColumns + ` FROM support_requests WHERE id=$1 FOR UPDATE`
	return scanRequest(q.QueryRow(ctx, query, id))
}

func (r *requestRepository) ListByBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.SupportRequest, error) {
	const query = `
        SELECT ` + requestColumns + ` FROM support_requests
        WHERE beneficiary_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, beneficiaryID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.SupportRequest, error) {
	const query = `
        SELECT ` + requestColumns + ` FROM support_requests
        WHERE status=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, status, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) SetReviewed(ctx context.Context, q Querier, id string, status domain.RequestStatus, reviewerID string, reviewedAt time.Time) error {
	const query = `
        UPDATE support_requests
        SET status=$1, reviewed_by=$2, reviewed_at=$3, updated_at=NOW()
        WHERE id=$4 AND status='PENDING'`
	cmd, err := q.Exec(ctx, query, status, reviewerID, reviewedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) MarkFulfilled(ctx context.Context, q Querier, id string) error {
	const query = `
        UPDATE support_requests SET status='FULFILLED', updated_at=NOW()
        WHERE id=$1 AND status='APPROVED'`
	cmd, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountApprovedFoodPack counts FOOD_PACK requests in APPROVED or FULFILLED,
// the numerator of the eligibility gate.
func (r *requestRepository) CountApprovedFoodPack(ctx context.Context, q Querier, beneficiaryID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM support_requests
        WHERE beneficiary_id=$1 AND type='FOOD_PACK' AND status IN ('APPROVED', 'FULFILLED')`
	if q == nil {
		q = r.db
	}
	var count int
	err := q.QueryRow(ctx, query, beneficiaryID).Scan(&count)
	return count, err
}

func scanRequest(row pgx.Row) (*domain.SupportRequest, error) {
	var request domain.SupportRequest
	if err := row.Scan(
		&request.ID,
		&request.BeneficiaryID,
		&request.Type,
		&request.Urgency,
		&request.Message,
		&request.Status,
		&request.ReviewedBy,
		&request.ReviewedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func scanRequests(rows pgx.Rows) ([]domain.SupportRequest, error) {
	var result []domain.SupportRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
