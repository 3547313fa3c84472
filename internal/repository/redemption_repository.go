package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// RedemptionRepository stores the immutable redemption audit records.
type RedemptionRepository interface {
	Create(ctx context.Context, q Querier, redemption *domain.VoucherRedemption) error
	GetByVoucherID(ctx context.Context, voucherID string) (*domain.VoucherRedemption, error)
	ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]domain.VoucherRedemption, error)
}

type redemptionRepository struct {
	db DB
}

// NewRedemptionRepository instantiates the repository.
func NewRedemptionRepository(db DB) RedemptionRepository {
	return &redemptionRepository{db: db}
}

const redemptionColumns = `id, voucher_id, partner_id, beneficiary_id, staff_id, value_minor, meal_description, redeemed_at`

func (r *redemptionRepository) Create(ctx context.Context, q Querier, redemption *domain.VoucherRedemption) error {
	const query = `
        INSERT INTO voucher_redemptions (voucher_id, partner_id, beneficiary_id, staff_id, value_minor, meal_description)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, redeemed_at`

	if q == nil {
		q = r.db
	}
	return q.QueryRow(ctx, query,
		redemption.VoucherID,
		redemption.PartnerID,
		redemption.BeneficiaryID,
		redemption.StaffID,
		redemption.ValueMinorUnits,
		redemption.MealDescription,
	).Scan(&redemption.ID, &redemption.RedeemedAt)
}

func (r *redemptionRepository) GetByVoucherID(ctx context.Context, voucherID string) (*domain.VoucherRedemption, error) {
	const query = `SELECT ` + redemptionColumns + ` FROM voucher_redemptions WHERE voucher_id=$1`
	return scanRedemption(r.db.QueryRow(ctx, query, voucherID))
}

func (r *redemptionRepository) ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]domain.VoucherRedemption, error) {
	const query = `
        SELECT ` + redemptionColumns + ` FROM voucher_redemptions
        WHERE partner_id=$1 ORDER BY redeemed_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, partnerID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VoucherRedemption
	for rows.Next() {
		redemption, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *redemption)
	}
	return result, rows.Err()
}

func scanRedemption(row pgx.Row) (*domain.VoucherRedemption, error) {
	var redemption domain.VoucherRedemption
	if err := row.Scan(
		&redemption.ID,
		&redemption.VoucherID,
		&redemption.PartnerID,
		&redemption.BeneficiaryID,
		&redemption.StaffID,
		&redemption.ValueMinorUnits,
		&redemption.MealDescription,
		&redemption.RedeemedAt,
	); err != nil {
		return nil, err
	}
	return &redemption, nil
}
