package session

import (
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBookingTypeInactive = errs.BadRequest("Booking type is not active")
	ErrSlotUnavailable     = errs.BadRequest("Time slot is not available")
	ErrSlotStarted         = errs.BadRequest("Time slot has already started")
	ErrAlreadyCancelled    = errs.BadRequest("Session already cancelled")
	ErrPastSession         = errs.BadRequest("Cannot cancel past sessions")
	ErrAlreadyPaid         = errs.BadRequest("Session already paid")
	ErrCancelled           = errs.BadRequest("Session is cancelled")
	ErrInvalidTransition   = errs.BadRequest("Invalid status transition")
	ErrInvalidStatus       = errs.BadRequest("Invalid session status")
	ErrNegativePrice       = errs.BadRequest("Price cannot be negative")
)

type BookingSpec struct {
	ID        uuid.UUID
	CoachID   uuid.UUID
	BasePrice decimal.Decimal
	IsActive  bool
}

type SlotSpec struct {
	ID          uuid.UUID
	Start       time.Time
	DurationMin int
	IsAvailable bool
}

type Session struct {
	id              uuid.UUID
	userID          uuid.UUID
	coachID         uuid.UUID
	bookingTypeID   uuid.UUID
	timeSlotID      uuid.UUID
	discountID      *uuid.UUID
	dateTime        time.Time
	durationMin     int
	price           decimal.Decimal
	isPaid          bool
	status          Status
	paymentID       *uuid.UUID
	calendarEventID *string
	createdAt       time.Time
	updatedAt       time.Time
}

func ReconstructSession(
	id, userID, coachID, bookingTypeID, timeSlotID uuid.UUID,
	discountID *uuid.UUID,
	dateTime time.Time,
	durationMin int,
	price decimal.Decimal,
	isPaid bool,
	status Status,
	paymentID *uuid.UUID,
	calendarEventID *string,
	createdAt, updatedAt time.Time,
) *Session {
	return &Session{
		id:              id,
		userID:          userID,
		coachID:         coachID,
		bookingTypeID:   bookingTypeID,
		timeSlotID:      timeSlotID,
		discountID:      discountID,
		dateTime:        dateTime,
		durationMin:     durationMin,
		price:           price,
		isPaid:          isPaid,
		status:          status,
		paymentID:       paymentID,
		calendarEventID: calendarEventID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (s *Session) ID() uuid.UUID            { return s.id }
func (s *Session) UserID() uuid.UUID        { return s.userID }
func (s *Session) CoachID() uuid.UUID       { return s.coachID }
func (s *Session) BookingTypeID() uuid.UUID { return s.bookingTypeID }
func (s *Session) TimeSlotID() uuid.UUID    { return s.timeSlotID }
func (s *Session) DiscountID() *uuid.UUID   { return s.discountID }
func (s *Session) DateTime() time.Time      { return s.dateTime }
func (s *Session) DurationMin() int         { return s.durationMin }
func (s *Session) Price() decimal.Decimal   { return s.price }
func (s *Session) IsPaid() bool             { return s.isPaid }
func (s *Session) Status() Status           { return s.status }
func (s *Session) PaymentID() *uuid.UUID    { return s.paymentID }
func (s *Session) CalendarEventID() *string { return s.calendarEventID }
func (s *Session) CreatedAt() time.Time     { return s.createdAt }
func (s *Session) UpdatedAt() time.Time     { return s.updatedAt }
func (s *Session) EndTime() time.Time       { return s.dateTime.Add(time.Duration(s.durationMin) * time.Minute) }
func (s *Session) IsCancelled() bool        { return s.status == StatusCancelled }
func (s *Session) HasCalendarEvent() bool   { return s.calendarEventID != nil && *s.calendarEventID != "" }

func (s *Session) ParticipantID(p access.Participant) uuid.UUID {
	if p == access.Provider {
		return s.coachID
	}
	return s.userID
}

func (s *Session) CanCancel(now time.Time) error {
	if s.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if s.dateTime.Before(now) {
		return ErrPastSession
	}
	if !s.status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Session) Cancel(now time.Time) error {
	if err := s.CanCancel(now); err != nil {
		return err
	}
	s.status = StatusCancelled
	s.updatedAt = now
	return nil
}

// TransitionTo handles status changes other than cancellation.
func (s *Session) TransitionTo(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if s.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if next == StatusCancelled || !s.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	s.status = next
	s.updatedAt = now
	return nil
}

func (s *Session) CanPay() error {
	if s.isPaid {
		return ErrAlreadyPaid
	}
	if s.status == StatusCancelled {
		return ErrCancelled
	}
	return nil
}

func (s *Session) MarkPaid(paymentID uuid.UUID, now time.Time) error {
	if err := s.CanPay(); err != nil {
		return err
	}
	s.isPaid = true
	s.paymentID = &paymentID
	s.updatedAt = now
	return nil
}
