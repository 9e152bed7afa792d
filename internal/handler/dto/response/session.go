package response

import (
	"time"

	"coach-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type SessionResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	UserEmail       string          `json:"userEmail"`
	CoachID         uuid.UUID       `json:"coachId"`
	CoachEmail      string          `json:"coachEmail"`
	BookingTypeID   uuid.UUID       `json:"bookingTypeId"`
	BookingTypeName string          `json:"bookingTypeName"`
	TimeSlotID      uuid.UUID       `json:"timeSlotId"`
	DiscountID      *uuid.UUID      `json:"discountId,omitempty"`
	DiscountCode    *string         `json:"discountCode,omitempty"`
	DateTime        time.Time       `json:"dateTime"`
	DurationMin     int             `json:"durationMin"`
	Price           decimal.Decimal `json:"price"`
	IsPaid          bool            `json:"isPaid"`
	Status          string          `json:"status"`
	PaymentID       *uuid.UUID      `json:"paymentId,omitempty"`
	CalendarEventID *string         `json:"calendarEventId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type SessionListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	CoachID         uuid.UUID       `json:"coachId"`
	BookingTypeName string          `json:"bookingTypeName"`
	DateTime        time.Time       `json:"dateTime"`
	DurationMin     int             `json:"durationMin"`
	Price           decimal.Decimal `json:"price"`
	IsPaid          bool            `json:"isPaid"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type SessionListResponse struct {
	Items      []SessionListItemResponse `json:"items"`
	NextCursor *string                   `json:"nextCursor,omitempty"`
}

func FromSessionView(v *queries.SessionView) (*SessionResponse, error) {
	var out SessionResponse
	if err := copier.Copy(&out, v); err != nil {
		return nil, err
	}
	return &out, nil
}

func FromSessionList(items []*queries.SessionListItem, next *queries.Cursor) (*SessionListResponse, error) {
	out := &SessionListResponse{Items: make([]SessionListItemResponse, 0, len(items))}
	for _, it := range items {
		var r SessionListItemResponse
		if err := copier.Copy(&r, it); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, r)
	}
	if next != nil {
		out.NextCursor = &next.After
	}
	return out, nil
}
