//go:build unit || e2e

package builder

import (
	"time"

	reqdto "coach-booking/internal/handler/dto/request"
	"coach-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SessionBuilder struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	UserEmail       string
	CoachID         uuid.UUID
	CoachEmail      string
	BookingTypeID   uuid.UUID
	BookingTypeName string
	TimeSlotID      uuid.UUID
	DiscountCode    *string
	DateTime        time.Time
	DurationMin     int
	Price           decimal.Decimal
	IsPaid          bool
	Status          string
	CreatedAt       time.Time
}

func NewSessionBuilder() *SessionBuilder {
	now := time.Now().UTC().Truncate(time.Second)
	return &SessionBuilder{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		UserEmail:       "client@example.com",
		CoachID:         uuid.New(),
		CoachEmail:      "coach@example.com",
		BookingTypeID:   uuid.New(),
		BookingTypeName: "Intro call",
		TimeSlotID:      uuid.New(),
		DateTime:        now.Add(48 * time.Hour),
		DurationMin:     60,
		Price:           decimal.RequireFromString("50.00"),
		Status:          "SCHEDULED",
		CreatedAt:       now,
	}
}

func (b *SessionBuilder) With(mutate func(*SessionBuilder)) *SessionBuilder {
	mutate(b)
	return b
}

func (b *SessionBuilder) BuildView() *queries.SessionView {
	return &queries.SessionView{
		ID:              b.ID,
		UserID:          b.UserID,
		UserEmail:       b.UserEmail,
		CoachID:         b.CoachID,
		CoachEmail:      b.CoachEmail,
		BookingTypeID:   b.BookingTypeID,
		BookingTypeName: b.BookingTypeName,
		TimeSlotID:      b.TimeSlotID,
		DiscountCode:    b.DiscountCode,
		DateTime:        b.DateTime,
		DurationMin:     b.DurationMin,
		Price:           b.Price,
		IsPaid:          b.IsPaid,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
}

func (b *SessionBuilder) BuildListItem() *queries.SessionListItem {
	return &queries.SessionListItem{
		ID:              b.ID,
		UserID:          b.UserID,
		CoachID:         b.CoachID,
		BookingTypeName: b.BookingTypeName,
		DateTime:        b.DateTime,
		DurationMin:     b.DurationMin,
		Price:           b.Price,
		IsPaid:          b.IsPaid,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
	}
}

func (b *SessionBuilder) BuildCreateRequestDTO() reqdto.CreateSessionRequest {
	return reqdto.CreateSessionRequest{
		BookingTypeID: b.BookingTypeID,
		TimeSlotID:    b.TimeSlotID,
		DiscountCode:  b.DiscountCode,
	}
}
