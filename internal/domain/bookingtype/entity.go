package bookingtype

import (
	"strings"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxNameLength = 100

var (
	ErrInvalidName     = errs.BadRequest("Booking type name must be 1-100 characters")
	ErrInvalidDuration = errs.BadRequest("Duration must be positive")
	ErrInvalidPrice    = errs.BadRequest("Base price cannot be negative")
)

type BookingType struct {
	id          uuid.UUID
	coachID     uuid.UUID
	name        string
	durationMin int
	basePrice   decimal.Decimal
	isActive    bool
	createdAt   time.Time
}

func NewBookingType(coachID uuid.UUID, name string, durationMin int, basePrice decimal.Decimal, now time.Time) (*BookingType, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxNameLength {
		return nil, ErrInvalidName
	}
	if durationMin <= 0 {
		return nil, ErrInvalidDuration
	}
	if basePrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	return &BookingType{
		id:          uuid.New(),
		coachID:     coachID,
		name:        name,
		durationMin: durationMin,
		basePrice:   basePrice,
		isActive:    true,
		createdAt:   now,
	}, nil
}

func ReconstructBookingType(id, coachID uuid.UUID, name string, durationMin int, basePrice decimal.Decimal, isActive bool, createdAt time.Time) *BookingType {
	return &BookingType{
		id:          id,
		coachID:     coachID,
		name:        name,
		durationMin: durationMin,
		basePrice:   basePrice,
		isActive:    isActive,
		createdAt:   createdAt,
	}
}

func (b *BookingType) ID() uuid.UUID              { return b.id }
func (b *BookingType) CoachID() uuid.UUID         { return b.coachID }
func (b *BookingType) Name() string               { return b.name }
func (b *BookingType) DurationMin() int           { return b.durationMin }
func (b *BookingType) BasePrice() decimal.Decimal { return b.basePrice }
func (b *BookingType) IsActive() bool             { return b.isActive }
func (b *BookingType) CreatedAt() time.Time       { return b.createdAt }

func (b *BookingType) ParticipantID(p access.Participant) uuid.UUID {
	if p == access.Provider {
		return b.coachID
	}
	return uuid.Nil
}
