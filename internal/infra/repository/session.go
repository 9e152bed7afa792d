package repository

import (
	"context"
	"time"

	"coach-booking/internal/domain/session"
	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const sessionColumns = `id, user_id, coach_id, booking_type_id, time_slot_id, discount_id, date_time,
	duration_min, price, is_paid, status, payment_id, calendar_event_id, created_at, updated_at`

const (
	createSessionSQL = `INSERT INTO sessions (` + sessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	findSessionByIDSQL = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	findSessionByIDForUpdateSQL = findSessionByIDSQL + ` FOR UPDATE`

	findSessionByCalendarEventSQL = `SELECT ` + sessionColumns + ` FROM sessions WHERE calendar_event_id = $1`

	updateSessionStatusSQL = `UPDATE sessions SET status = $2, updated_at = $3 WHERE id = $1`

	markSessionPaidSQL = `UPDATE sessions
	SET is_paid = TRUE, payment_id = $2, updated_at = $3
	WHERE id = $1 AND status <> 'CANCELLED' AND NOT is_paid`

	attachCalendarEventSQL = `UPDATE sessions
	SET calendar_event_id = $2, updated_at = $3
	WHERE id = $1 AND calendar_event_id IS NULL`

	detachCalendarEventSQL = `UPDATE sessions SET calendar_event_id = NULL, updated_at = $2 WHERE id = $1`

	countActiveSessionsBySlotSQL = `SELECT count(*) FROM sessions WHERE time_slot_id = $1 AND status <> 'CANCELLED'`
	countSessionsBySlotSQL       = `SELECT count(*) FROM sessions WHERE time_slot_id = $1`
)

type SessionRepository struct {
	db db.DBTX
}

func NewSessionRepository(db db.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := r.db.Exec(ctx, createSessionSQL,
		s.ID(),
		s.UserID(),
		s.CoachID(),
		s.BookingTypeID(),
		s.TimeSlotID(),
		pgconv.UUIDPtrToPgtype(s.DiscountID()),
		s.DateTime(),
		s.DurationMin(),
		pgconv.DecimalToPgtype(s.Price()),
		s.IsPaid(),
		string(s.Status()),
		pgconv.UUIDPtrToPgtype(s.PaymentID()),
		pgconv.StringPtrToPgtype(s.CalendarEventID()),
		s.CreatedAt(),
		s.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create session", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return r.findOne(ctx, findSessionByIDSQL, id)
}

func (r *SessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return r.findOne(ctx, findSessionByIDForUpdateSQL, id)
}

func (r *SessionRepository) FindByCalendarEventID(ctx context.Context, eventID string) (*session.Session, error) {
	return r.findOne(ctx, findSessionByCalendarEventSQL, eventID)
}

func (r *SessionRepository) findOne(ctx context.Context, query string, arg any) (*session.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("session not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find session", err)
	}
	return s, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status session.Status, now time.Time) error {
	tag, err := r.db.Exec(ctx, updateSessionStatusSQL, id, string(status), now)
	if err != nil {
		return infra.WrapRepoErr("failed to update session status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "session not found")
	}
	return nil
}

func (r *SessionRepository) MarkPaid(ctx context.Context, id, paymentID uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, markSessionPaidSQL, id, paymentID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark session paid", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepository) AttachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, attachCalendarEventSQL, id, eventID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to attach calendar event", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepository) DetachCalendarEvent(ctx context.Context, id uuid.UUID, now time.Time) error {
	if _, err := r.db.Exec(ctx, detachCalendarEventSQL, id, now); err != nil {
		return infra.WrapRepoErr("failed to detach calendar event", err)
	}
	return nil
}

func (r *SessionRepository) CountActiveBySlot(ctx context.Context, slotID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, countActiveSessionsBySlotSQL, slotID).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count sessions for slot", err)
	}
	return n, nil
}

func (r *SessionRepository) CountBySlot(ctx context.Context, slotID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, countSessionsBySlotSQL, slotID).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count sessions for slot", err)
	}
	return n, nil
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		id, userID, coachID, bookingTypeID, slotID uuid.UUID
		discountID, paymentID                      pgtype.UUID
		dateTime, createdAt, updatedAt             time.Time
		durationMin                                int
		price                                      pgtype.Numeric
		isPaid                                     bool
		status                                     string
		calendarEventID                            pgtype.Text
	)
	err := row.Scan(&id, &userID, &coachID, &bookingTypeID, &slotID, &discountID, &dateTime,
		&durationMin, &price, &isPaid, &status, &paymentID, &calendarEventID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	amount, err := pgconv.DecimalFromPgtype(price)
	if err != nil {
		return nil, err
	}

	return session.ReconstructSession(
		id, userID, coachID, bookingTypeID, slotID,
		pgconv.UUIDPtrFromPgtype(discountID),
		dateTime,
		durationMin,
		amount,
		isPaid,
		session.Status(status),
		pgconv.UUIDPtrFromPgtype(paymentID),
		pgconv.StringPtrFromPgtype(calendarEventID),
		createdAt, updatedAt,
	), nil
}
