package repository

import (
	"context"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// PartnerRepository defines persistence access for food partners.
type PartnerRepository interface {
	Create(ctx context.Context, q Querier, partner *domain.Partner) error
	GetByID(ctx context.Context, id string) (*domain.Partner, error)
	Count(ctx context.Context) (int64, error)
}

type partnerRepository struct {
	db DB
}

// NewPartnerRepository returns a Postgres-backed implementation.
func NewPartnerRepository(db DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, q Querier, partner *domain.Partner) error {
	const query = `
        INSERT INTO partners (name, address, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	if q == nil {
		q = r.db
	}
	return q.QueryRow(ctx, query,
		partner.Name,
		partner.Address,
		partner.Status,
	).Scan(&partner.ID, &partner.CreatedAt, &partner.UpdatedAt)
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	const query = `
        SELECT id, name, address, status, created_at, updated_at
        FROM partners WHERE id=$1`

	var partner domain.Partner
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&partner.ID,
		&partner.Name,
		&partner.Address,
		&partner.Status,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM partners`).Scan(&count)
	return count, err
}
