package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTimeSlotRequest struct {
	StartTime   time.Time `json:"startTime" binding:"required"`
	DurationMin int       `json:"durationMin" binding:"required"`
}

type CreateBookingTypeRequest struct {
	Name        string          `json:"name" binding:"required"`
	DurationMin int             `json:"durationMin" binding:"required"`
	BasePrice   decimal.Decimal `json:"basePrice"`
}

type CreateCalendarEventRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
}
