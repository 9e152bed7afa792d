package request

import (
	"strings"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	BookingTypeID uuid.UUID `json:"bookingTypeId" binding:"required"`
	TimeSlotID    uuid.UUID `json:"timeSlotId" binding:"required"`
	DiscountCode  *string   `json:"discountCode,omitempty"`
}

func (r CreateSessionRequest) GetDiscountCode() *string {
	if r.DiscountCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.DiscountCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListSessionsQuery struct {
	After string `form:"after"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
