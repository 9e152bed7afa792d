package session

import (
	"coach-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
}

func NewFactory(clock clock.Clock, priceCalculator PriceCalculator) *Factory {
	return &Factory{
		Clock:           clock,
		PriceCalculator: priceCalculator,
	}
}

// NewSession builds a SCHEDULED session. The coach comes from the booking
// type, and the time and duration are copied from the slot, which must not
// have started yet.
func (f *Factory) NewSession(
	userID uuid.UUID,
	booking BookingSpec,
	slot SlotSpec,
	discount AppliedDiscount,
) (*Session, error) {
	if !booking.IsActive {
		return nil, ErrBookingTypeInactive
	}
	if !slot.IsAvailable {
		return nil, ErrSlotUnavailable
	}
	if booking.BasePrice.IsNegative() {
		return nil, ErrNegativePrice
	}

	now := f.Clock.Now()
	if !slot.Start.After(now) {
		return nil, ErrSlotStarted
	}
	return &Session{
		id:            uuid.New(),
		userID:        userID,
		coachID:       booking.CoachID,
		bookingTypeID: booking.ID,
		timeSlotID:    slot.ID,
		discountID:    discount.ID(),
		dateTime:      slot.Start,
		durationMin:   slot.DurationMin,
		price:         f.PriceCalculator.Calculate(booking.BasePrice, discount),
		status:        StatusScheduled,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}
