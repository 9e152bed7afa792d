package repository

import (
	"context"
	"time"

	"coach-booking/internal/domain/discount"
	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const discountColumns = `id, code, amount, expiry, use_count, max_usage, is_active, coach_id, created_at, updated_at`

const (
	createDiscountSQL = `INSERT INTO discounts (` + discountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	findDiscountByCodeSQL = `SELECT ` + discountColumns + ` FROM discounts WHERE code = $1`

	// Single conditional increment: eligibility is re-checked by the UPDATE itself.
	consumeDiscountSQL = `UPDATE discounts
	SET use_count = use_count + 1, updated_at = $2
	WHERE code = $1 AND is_active AND expiry >= $2 AND use_count < max_usage
	RETURNING ` + discountColumns

	updateDiscountSQL = `UPDATE discounts
	SET amount = $2, expiry = $3, max_usage = $4, updated_at = $5
	WHERE id = $1`

	deactivateDiscountSQL = `UPDATE discounts SET is_active = FALSE, updated_at = $2 WHERE code = $1 AND is_active`
)

type DiscountRepository struct {
	db db.DBTX
}

func NewDiscountRepository(db db.DBTX) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(ctx context.Context, d *discount.Discount) error {
	_, err := r.db.Exec(ctx, createDiscountSQL,
		d.ID(),
		d.Code().String(),
		pgconv.DecimalToPgtype(d.Amount()),
		d.Expiry(),
		d.UseCount(),
		d.MaxUsage(),
		d.IsActive(),
		d.CoachID(),
		d.CreatedAt(),
		d.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create discount", err)
	}
	return nil
}

func (r *DiscountRepository) FindByCode(ctx context.Context, code discount.Code) (*discount.Discount, error) {
	d, err := scanDiscount(r.db.QueryRow(ctx, findDiscountByCodeSQL, code.String()))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find discount", err)
	}
	return d, nil
}

func (r *DiscountRepository) Consume(ctx context.Context, code discount.Code, now time.Time) (*discount.Discount, bool, error) {
	d, err := scanDiscount(r.db.QueryRow(ctx, consumeDiscountSQL, code.String(), now))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, infra.WrapRepoErr("failed to consume discount", err)
	}
	return d, true, nil
}

func (r *DiscountRepository) Update(ctx context.Context, d *discount.Discount) error {
	tag, err := r.db.Exec(ctx, updateDiscountSQL,
		d.ID(), pgconv.DecimalToPgtype(d.Amount()), d.Expiry(), d.MaxUsage(), d.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update discount", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "discount not found")
	}
	return nil
}

func (r *DiscountRepository) Deactivate(ctx context.Context, code discount.Code, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, deactivateDiscountSQL, code.String(), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to deactivate discount", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanDiscount(row pgx.Row) (*discount.Discount, error) {
	var (
		id, coachID                  uuid.UUID
		code                         string
		amount                       pgtype.Numeric
		expiry, createdAt, updatedAt time.Time
		useCount, maxUsage           int
		isActive                     bool
	)
	if err := row.Scan(&id, &code, &amount, &expiry, &useCount, &maxUsage, &isActive, &coachID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	value, err := pgconv.DecimalFromPgtype(amount)
	if err != nil {
		return nil, err
	}
	return discount.ReconstructDiscount(id, discount.Code(code), value, expiry, useCount, maxUsage, isActive, coachID, createdAt, updatedAt), nil
}
