package timeslot

import (
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const MaxDurationMin = 8 * 60

var (
	ErrStartInPast     = errs.BadRequest("Time slot must start in the future")
	ErrInvalidDuration = errs.BadRequest("Time slot duration is out of range")
)

type TimeSlot struct {
	id          uuid.UUID
	coachID     uuid.UUID
	start       time.Time
	durationMin int
	isAvailable bool
	createdAt   time.Time
}

func NewTimeSlot(coachID uuid.UUID, start time.Time, durationMin int, now time.Time) (*TimeSlot, error) {
	if !start.After(now) {
		return nil, ErrStartInPast
	}
	if durationMin <= 0 || durationMin > MaxDurationMin {
		return nil, ErrInvalidDuration
	}
	return &TimeSlot{
		id:          uuid.New(),
		coachID:     coachID,
		start:       start,
		durationMin: durationMin,
		isAvailable: true,
		createdAt:   now,
	}, nil
}

func ReconstructTimeSlot(id, coachID uuid.UUID, start time.Time, durationMin int, isAvailable bool, createdAt time.Time) *TimeSlot {
	return &TimeSlot{
		id:          id,
		coachID:     coachID,
		start:       start,
		durationMin: durationMin,
		isAvailable: isAvailable,
		createdAt:   createdAt,
	}
}

func (s *TimeSlot) ID() uuid.UUID        { return s.id }
func (s *TimeSlot) CoachID() uuid.UUID   { return s.coachID }
func (s *TimeSlot) Start() time.Time     { return s.start }
func (s *TimeSlot) DurationMin() int     { return s.durationMin }
func (s *TimeSlot) IsAvailable() bool    { return s.isAvailable }
func (s *TimeSlot) CreatedAt() time.Time { return s.createdAt }

func (s *TimeSlot) End() time.Time {
	return s.start.Add(time.Duration(s.durationMin) * time.Minute)
}

// A slot has no requester; only its coach (or an admin) may manage it.
func (s *TimeSlot) ParticipantID(p access.Participant) uuid.UUID {
	if p == access.Provider {
		return s.coachID
	}
	return uuid.Nil
}
