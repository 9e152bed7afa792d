package queries

import (
	"time"

	"coach-booking/internal/domain/access"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionView is the read model of a session joined with its participants
// and booking type.
type SessionView struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	UserEmail       string          `json:"user_email"`
	CoachID         uuid.UUID       `json:"coach_id"`
	CoachEmail      string          `json:"coach_email"`
	BookingTypeID   uuid.UUID       `json:"booking_type_id"`
	BookingTypeName string          `json:"booking_type_name"`
	TimeSlotID      uuid.UUID       `json:"time_slot_id"`
	DiscountID      *uuid.UUID      `json:"discount_id,omitempty"`
	DiscountCode    *string         `json:"discount_code,omitempty"`
	DateTime        time.Time       `json:"date_time"`
	DurationMin     int             `json:"duration_min"`
	Price           decimal.Decimal `json:"price"`
	IsPaid          bool            `json:"is_paid"`
	Status          string          `json:"status"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty"`
	CalendarEventID *string         `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (v *SessionView) ParticipantID(p access.Participant) uuid.UUID {
	if p == access.Provider {
		return v.CoachID
	}
	return v.UserID
}

type SessionListItem struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	CoachID         uuid.UUID       `json:"coach_id"`
	BookingTypeName string          `json:"booking_type_name"`
	DateTime        time.Time       `json:"date_time"`
	DurationMin     int             `json:"duration_min"`
	Price           decimal.Decimal `json:"price"`
	IsPaid          bool            `json:"is_paid"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SessionFilter narrows a listing to one participant. Both nil lists everything.
type SessionFilter struct {
	UserID  *uuid.UUID
	CoachID *uuid.UUID
}
