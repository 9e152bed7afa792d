package repository

import (
	"context"
	"time"

	"coach-booking/internal/domain/bookingtype"
	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingTypeColumns = `id, coach_id, name, duration_min, base_price, is_active, created_at`

const (
	createBookingTypeSQL = `INSERT INTO booking_types (` + bookingTypeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	findBookingTypeByIDSQL = `SELECT ` + bookingTypeColumns + ` FROM booking_types WHERE id = $1`

	listActiveBookingTypesSQL = `SELECT ` + bookingTypeColumns + ` FROM booking_types
	WHERE coach_id = $1 AND is_active
	ORDER BY name ASC, id ASC`

	deactivateBookingTypeSQL = `UPDATE booking_types SET is_active = FALSE WHERE id = $1`
)

type BookingTypeRepository struct {
	db db.DBTX
}

func NewBookingTypeRepository(db db.DBTX) *BookingTypeRepository {
	return &BookingTypeRepository{db: db}
}

func (r *BookingTypeRepository) Create(ctx context.Context, bt *bookingtype.BookingType) error {
	_, err := r.db.Exec(ctx, createBookingTypeSQL,
		bt.ID(), bt.CoachID(), bt.Name(), bt.DurationMin(), pgconv.DecimalToPgtype(bt.BasePrice()), bt.IsActive(), bt.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create booking type", err)
	}
	return nil
}

func (r *BookingTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingtype.BookingType, error) {
	bt, err := scanBookingType(r.db.QueryRow(ctx, findBookingTypeByIDSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking type not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking type", err)
	}
	return bt, nil
}

func (r *BookingTypeRepository) ListActiveByCoach(ctx context.Context, coachID uuid.UUID) ([]*bookingtype.BookingType, error) {
	rows, err := r.db.Query(ctx, listActiveBookingTypesSQL, coachID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking types", err)
	}
	defer rows.Close()

	result := make([]*bookingtype.BookingType, 0)
	for rows.Next() {
		bt, err := scanBookingType(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking type", err)
		}
		result = append(result, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking types", err)
	}
	return result, nil
}

func (r *BookingTypeRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deactivateBookingTypeSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to deactivate booking type", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "booking type not found")
	}
	return nil
}

func scanBookingType(row pgx.Row) (*bookingtype.BookingType, error) {
	var (
		id, coachID uuid.UUID
		name        string
		durationMin int
		basePrice   pgtype.Numeric
		isActive    bool
		createdAt   time.Time
	)
	if err := row.Scan(&id, &coachID, &name, &durationMin, &basePrice, &isActive, &createdAt); err != nil {
		return nil, err
	}
	price, err := pgconv.DecimalFromPgtype(basePrice)
	if err != nil {
		return nil, err
	}
	return bookingtype.ReconstructBookingType(id, coachID, name, durationMin, price, isActive, createdAt), nil
}
