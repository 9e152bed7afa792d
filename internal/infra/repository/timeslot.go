package repository

import (
	"context"
	"time"

	"coach-booking/internal/domain/timeslot"
	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const timeSlotColumns = `id, coach_id, start_time, duration_min, is_available, created_at`

const (
	createTimeSlotSQL = `INSERT INTO time_slots (` + timeSlotColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	findTimeSlotByIDSQL = `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1`

	findAvailableTimeSlotSQL = `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1 AND is_available`

	listAvailableTimeSlotsSQL = `SELECT ` + timeSlotColumns + ` FROM time_slots
	WHERE coach_id = $1 AND is_available AND start_time >= $2
	ORDER BY start_time ASC, id ASC`

	// A concurrent claimer blocks on the row lock and then sees is_available = false.
	claimTimeSlotSQL = `UPDATE time_slots SET is_available = FALSE WHERE id = $1 AND is_available`

	releaseTimeSlotSQL = `UPDATE time_slots SET is_available = TRUE WHERE id = $1`

	markTimeSlotUnavailableSQL = `UPDATE time_slots SET is_available = FALSE WHERE id = $1`

	deleteTimeSlotSQL = `DELETE FROM time_slots WHERE id = $1`
)

type TimeSlotRepository struct {
	db db.DBTX
}

func NewTimeSlotRepository(db db.DBTX) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

func (r *TimeSlotRepository) Create(ctx context.Context, slot *timeslot.TimeSlot) error {
	_, err := r.db.Exec(ctx, createTimeSlotSQL,
		slot.ID(), slot.CoachID(), slot.Start(), slot.DurationMin(), slot.IsAvailable(), slot.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create time slot", err)
	}
	return nil
}

func (r *TimeSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	return r.findOne(ctx, findTimeSlotByIDSQL, id)
}

func (r *TimeSlotRepository) FindAvailableByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	return r.findOne(ctx, findAvailableTimeSlotSQL, id)
}

func (r *TimeSlotRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*timeslot.TimeSlot, error) {
	slot, err := scanTimeSlot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("time slot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find time slot", err)
	}
	return slot, nil
}

func (r *TimeSlotRepository) ListAvailableByCoach(ctx context.Context, coachID uuid.UUID, from time.Time) ([]*timeslot.TimeSlot, error) {
	rows, err := r.db.Query(ctx, listAvailableTimeSlotsSQL, coachID, from)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list time slots", err)
	}
	defer rows.Close()

	result := make([]*timeslot.TimeSlot, 0)
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan time slot", err)
		}
		result = append(result, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate time slots", err)
	}
	return result, nil
}

func (r *TimeSlotRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, claimTimeSlotSQL, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim time slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TimeSlotRepository) Release(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, releaseTimeSlotSQL, id); err != nil {
		return infra.WrapRepoErr("failed to release time slot", err)
	}
	return nil
}

func (r *TimeSlotRepository) MarkUnavailable(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, markTimeSlotUnavailableSQL, id); err != nil {
		return infra.WrapRepoErr("failed to mark time slot unavailable", err)
	}
	return nil
}

func (r *TimeSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteTimeSlotSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete time slot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "time slot not found")
	}
	return nil
}

func scanTimeSlot(row pgx.Row) (*timeslot.TimeSlot, error) {
	var (
		id, coachID      uuid.UUID
		start, createdAt time.Time
		durationMin      int
		isAvailable      bool
	)
	if err := row.Scan(&id, &coachID, &start, &durationMin, &isAvailable, &createdAt); err != nil {
		return nil, err
	}
	return timeslot.ReconstructTimeSlot(id, coachID, start, durationMin, isAvailable, createdAt), nil
}
