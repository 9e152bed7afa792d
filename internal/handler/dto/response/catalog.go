package response

import (
	"time"

	"coach-booking/internal/domain/bookingtype"
	"coach-booking/internal/domain/discount"
	"coach-booking/internal/domain/timeslot"
	"coach-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type DiscountResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	Expiry    time.Time       `json:"expiry"`
	UseCount  int             `json:"useCount"`
	MaxUsage  int             `json:"maxUsage"`
	IsActive  bool            `json:"isActive"`
	CoachID   uuid.UUID       `json:"coachId"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type DiscountValidationResponse struct {
	Valid  bool            `json:"valid"`
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
	Expiry time.Time       `json:"expiry"`
}

type TimeSlotResponse struct {
	ID          uuid.UUID `json:"id"`
	CoachID     uuid.UUID `json:"coachId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	DurationMin int       `json:"durationMin"`
	IsAvailable bool      `json:"isAvailable"`
}

type BookingTypeResponse struct {
	ID          uuid.UUID       `json:"id"`
	CoachID     uuid.UUID       `json:"coachId"`
	Name        string          `json:"name"`
	DurationMin int             `json:"durationMin"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	IsActive    bool            `json:"isActive"`
}

type CalendarEventResponse struct {
	EventID   string    `json:"eventId"`
	Summary   string    `json:"summary"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees []string  `json:"attendees"`
}

type DeletedEventResponse struct {
	EventID string `json:"eventId"`
	Deleted bool   `json:"deleted"`
}

func FromDiscount(d *discount.Discount) *DiscountResponse {
	return &DiscountResponse{
		ID:        d.ID(),
		Code:      d.Code().String(),
		Amount:    d.Amount(),
		Expiry:    d.Expiry(),
		UseCount:  d.UseCount(),
		MaxUsage:  d.MaxUsage(),
		IsActive:  d.IsActive(),
		CoachID:   d.CoachID(),
		UpdatedAt: d.UpdatedAt(),
	}
}

func FromValidDiscount(d *discount.Discount) *DiscountValidationResponse {
	return &DiscountValidationResponse{
		Valid:  true,
		Code:   d.Code().String(),
		Amount: d.Amount(),
		Expiry: d.Expiry(),
	}
}

func FromTimeSlot(s *timeslot.TimeSlot) TimeSlotResponse {
	return TimeSlotResponse{
		ID:          s.ID(),
		CoachID:     s.CoachID(),
		StartTime:   s.Start(),
		EndTime:     s.End(),
		DurationMin: s.DurationMin(),
		IsAvailable: s.IsAvailable(),
	}
}

func FromTimeSlots(slots []*timeslot.TimeSlot) []TimeSlotResponse {
	out := make([]TimeSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, FromTimeSlot(s))
	}
	return out
}

func FromBookingType(b *bookingtype.BookingType) BookingTypeResponse {
	return BookingTypeResponse{
		ID:          b.ID(),
		CoachID:     b.CoachID(),
		Name:        b.Name(),
		DurationMin: b.DurationMin(),
		BasePrice:   b.BasePrice(),
		IsActive:    b.IsActive(),
	}
}

func FromBookingTypes(bts []*bookingtype.BookingType) []BookingTypeResponse {
	out := make([]BookingTypeResponse, 0, len(bts))
	for _, b := range bts {
		out = append(out, FromBookingType(b))
	}
	return out
}

func FromEventSummary(s *commands.EventSummary) (*CalendarEventResponse, error) {
	var out CalendarEventResponse
	if err := copier.Copy(&out, s); err != nil {
		return nil, err
	}
	return &out, nil
}

func FromDeletedEvent(d *commands.DeletedEvent) *DeletedEventResponse {
	return &DeletedEventResponse{EventID: d.EventID, Deleted: d.Deleted}
}
