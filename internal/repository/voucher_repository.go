package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// VoucherRepository encapsulates voucher persistence. The ForUpdate variants
// take a row lock and must run inside a caller-owned transaction; they are the
// serialization point for the at-most-once redemption guarantee.
type VoucherRepository interface {
	Create(ctx context.Context, q Querier, voucher *domain.Voucher) error
	GetByID(ctx context.Context, id string) (*domain.Voucher, error)
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
	GetByQRToken(ctx context.Context, token string) (*domain.Voucher, error)
	GetByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.Voucher, error)
	GetByCodeForUpdate(ctx context.Context, q Querier, code string) (*domain.Voucher, error)
	GetByQRTokenForUpdate(ctx context.Context, q Querier, token string) (*domain.Voucher, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.Voucher, error)
	CodeInUse(ctx context.Context, q Querier, code string) (bool, error)
	QRTokenInUse(ctx context.Context, q Querier, token string) (bool, error)
	SetStatus(ctx context.Context, q Querier, id string, from, to domain.VoucherStatus) error
	CountByStatus(ctx context.Context, status domain.VoucherStatus) (int64, error)
}

type voucherRepository struct {
	db DB
}

// NewVoucherRepository instantiates the repository.
func NewVoucherRepository(db DB) VoucherRepository {
	return &voucherRepository{db: db}
}

const voucherColumns = `id, code, qr_token, value_minor, beneficiary_id, issued_by, status, expires_at, created_at, updated_at`

func (r *voucherRepository) Create(ctx context.Context, q Querier, voucher *domain.Voucher) error {
	const query = `
        INSERT INTO vouchers (code, qr_token, value_minor, beneficiary_id, issued_by, status, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	if q == nil {
		q = r.db
	}
	return q.QueryRow(ctx, query,
		voucher.Code,
		voucher.QRToken,
		voucher.ValueMinorUnits,
		voucher.BeneficiaryID,
		voucher.IssuedBy,
		voucher.Status,
		voucher.ExpiresAt,
	).Scan(&voucher.ID, &voucher.CreatedAt, &voucher.UpdatedAt)
}

func (r *voucherRepository) GetByID(ctx context.Context, id string) (*domain.Voucher, error) {
	const query = `SELECT ` + voucherColumns + ` FROM vouchers WHERE id=$1`
	return scanVoucher(r.db.QueryRow(ctx, query, id))
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	const query = `SELECT ` + voucherColumns + ` FROM vouchers WHERE code=$1`
	return scanVoucher(r.db.QueryRow(ctx, query, code))
}

func (r *voucherRepository) GetByQRToken(ctx context.Context, token string) (*domain.Voucher, error) {
	const query = `SELECT ` + voucherColumns + ` FROM vouchers WHERE qr_token=$1`
	return scanVoucher(r.db.QueryRow(ctx, query, token))
}

func (r *voucherRepository) GetByIDForUpdate(ctx context.Context, q Querier, id string) (*domain.Voucher, error) {
	const query = `SELECT ` + voucherColumns + ` FROM vouchers WHERE id=$1 FOR UPDATE`
	return scanVoucher(q.QueryRow(ctx, query, id))
}

func (r *voucherRepository) GetByCodeForUpdate(ctx context.Context, q Querier, code string) (*domain.Voucher, error) {
	const query = `SELECT ` + voucherColumns + ` FROM vouchers WHERE code=$1 FOR UPDATE`
	return scanVoucher(q.QueryRow(ctx, query, code))
}

func (r *voucherRepository) GetByQRTokenForUpdate(ctx context.Context, q Querier, token string) (*domain.Voucher, error) {
	const query = `SELECT ` + voucherColumns + ` FROM vouchers WHERE qr_token=$1 FOR UPDATE`
	return scanVoucher(q.QueryRow(ctx, query, token))
}

func (r *voucherRepository) ListByBeneficiary(ctx context.Context, beneficiaryID string, limit, offset int) ([]domain.Voucher, error) {
	const query = `
        SELECT ` + voucherColumns + ` FROM vouchers
        WHERE beneficiary_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, beneficiaryID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Voucher
	for rows.Next() {
		voucher, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *voucher)
	}
	return result, rows.Err()
}

func (r *voucherRepository) CodeInUse(ctx context.Context, q Querier, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM vouchers WHERE code=$1)`
	if q == nil {
		q = r.db
	}
	var exists bool
	err := q.QueryRow(ctx, query, code).Scan(&exists)
	return exists, err
}

func (r *voucherRepository) QRTokenInUse(ctx context.Context, q Querier, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM vouchers WHERE qr_token=$1)`
	if q == nil {
		q = r.db
	}
	var exists bool
	err := q.QueryRow(ctx, query, token).Scan(&exists)
	return exists, err
}

// SetStatus flips the voucher status guarded by the expected current status;
// zero rows affected means the precondition no longer holds.
func (r *voucherRepository) SetStatus(ctx context.Context, q Querier, id string, from, to domain.VoucherStatus) error {
	const query = `UPDATE vouchers SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	cmd, err := q.Exec(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *voucherRepository) CountByStatus(ctx context.Context, status domain.VoucherStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vouchers WHERE status=$1`, status).Scan(&count)
	return count, err
}

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var voucher domain.Voucher
	if err := row.Scan(
		&voucher.ID,
		&voucher.Code,
		&voucher.QRToken,
		&voucher.ValueMinorUnits,
		&voucher.BeneficiaryID,
		&voucher.IssuedBy,
		&voucher.Status,
		&voucher.ExpiresAt,
		&voucher.CreatedAt,
		&voucher.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &voucher, nil
}
