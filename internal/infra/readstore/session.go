package readstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"
	"coach-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const getSessionViewByIDSQL = `SELECT s.id, s.user_id, u.email, s.coach_id, c.email, s.booking_type_id, bt.name,
	s.time_slot_id, s.discount_id, d.code, s.date_time, s.duration_min, s.price, s.is_paid, s.status,
	s.payment_id, s.calendar_event_id, s.created_at, s.updated_at
FROM sessions s
JOIN users u ON u.id = s.user_id
JOIN users c ON c.id = s.coach_id
JOIN booking_types bt ON bt.id = s.booking_type_id
LEFT JOIN discounts d ON d.id = s.discount_id
WHERE s.id = $1`

const listSessionsSelect = `SELECT s.id, s.user_id, s.coach_id, bt.name, s.date_time, s.duration_min,
	s.price, s.is_paid, s.status, s.created_at
FROM sessions s
JOIN booking_types bt ON bt.id = s.booking_type_id`

type SessionReadStore struct {
	db db.DBTX
}

func NewSessionReadStore(db db.DBTX) *SessionReadStore {
	return &SessionReadStore{db: db}
}

func (r *SessionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SessionView, error) {
	var (
		v                        queries.SessionView
		discountID, paymentID    pgtype.UUID
		discountCode, calendarID pgtype.Text
		price                    pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, getSessionViewByIDSQL, id).Scan(
		&v.ID, &v.UserID, &v.UserEmail, &v.CoachID, &v.CoachEmail, &v.BookingTypeID, &v.BookingTypeName,
		&v.TimeSlotID, &discountID, &discountCode, &v.DateTime, &v.DurationMin, &price, &v.IsPaid, &v.Status,
		&paymentID, &calendarID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("session not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find session by ID", err)
	}

	if v.Price, err = pgconv.DecimalFromPgtype(price); err != nil {
		return nil, infra.WrapRepoErr("invalid session price", err)
	}
	v.DiscountID = pgconv.UUIDPtrFromPgtype(discountID)
	v.DiscountCode = pgconv.StringPtrFromPgtype(discountCode)
	v.PaymentID = pgconv.UUIDPtrFromPgtype(paymentID)
	v.CalendarEventID = pgconv.StringPtrFromPgtype(calendarID)
	return &v, nil
}

func (r *SessionReadStore) FindFirstPage(ctx context.Context, filter queries.SessionFilter, limit int32) ([]*queries.SessionListItem, error) {
	query, args := buildListQuery(filter, nil, limit)
	return r.list(ctx, query, args)
}

func (r *SessionReadStore) FindKeyset(ctx context.Context, filter queries.SessionFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.SessionListItem, error) {
	query, args := buildListQuery(filter, &keyset{createdAt: lastCreatedAt, id: lastID}, limit)
	return r.list(ctx, query, args)
}

type keyset struct {
	createdAt time.Time
	id        uuid.UUID
}

func buildListQuery(filter queries.SessionFilter, after *keyset, limit int32) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != nil {
		where = append(where, "s.user_id = "+arg(*filter.UserID))
	}
	if filter.CoachID != nil {
		where = append(where, "s.coach_id = "+arg(*filter.CoachID))
	}
	if after != nil {
		where = append(where, "(s.created_at, s.id) < ("+arg(after.createdAt)+", "+arg(after.id)+")")
	}

	var sb strings.Builder
	sb.WriteString(listSessionsSelect)
	if len(where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\nORDER BY s.created_at DESC, s.id DESC\nLIMIT ")
	sb.WriteString(arg(limit))
	return sb.String(), args
}

func (r *SessionReadStore) list(ctx context.Context, query string, args []any) ([]*queries.SessionListItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list sessions", err)
	}
	defer rows.Close()

	result := make([]*queries.SessionListItem, 0)
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan session", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate sessions", err)
	}
	return result, nil
}

func scanListItem(rows pgx.Rows) (*queries.SessionListItem, error) {
	var (
		item  queries.SessionListItem
		price pgtype.Numeric
	)
	err := rows.Scan(&item.ID, &item.UserID, &item.CoachID, &item.BookingTypeName, &item.DateTime,
		&item.DurationMin, &price, &item.IsPaid, &item.Status, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if item.Price, err = pgconv.DecimalFromPgtype(price); err != nil {
		return nil, err
	}
	return &item, nil
}
