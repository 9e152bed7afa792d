package commands

import (
	"context"
	"log/slog"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/timeslot"
	"coach-booking/internal/infra"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateTimeSlotInput struct {
	Start       time.Time
	DurationMin int
}

type TimeSlotCommands interface {
	Create(ctx context.Context, actor access.Actor, in CreateTimeSlotInput) (*timeslot.TimeSlot, error)
	ListAvailable(ctx context.Context, coachID uuid.UUID) ([]*timeslot.TimeSlot, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
	FindAvailableByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error)
	Claim(ctx context.Context, id uuid.UUID) error
	Release(ctx context.Context, id uuid.UUID) error
}

type timeSlotUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewTimeSlotUseCase(uow shared.UnitOfWork, clk clock.Clock) TimeSlotCommands {
	return &timeSlotUseCaseImpl{uow: uow, clock: clk}
}

func (uc *timeSlotUseCaseImpl) Create(ctx context.Context, actor access.Actor, in CreateTimeSlotInput) (*timeslot.TimeSlot, error) {
	if !actor.IsCoach() {
		return nil, ErrCoachOnly
	}
	slot, err := timeslot.NewTimeSlot(actor.UserID, in.Start, in.DurationMin, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.uow.Reads().TimeSlots().Create(ctx, slot); err != nil {
		return nil, err
	}
	slog.Info("time slot created", "time_slot_id", slot.ID(), "coach_id", actor.UserID, "start", slot.Start())
	return slot, nil
}

func (uc *timeSlotUseCaseImpl) ListAvailable(ctx context.Context, coachID uuid.UUID) ([]*timeslot.TimeSlot, error) {
	return uc.uow.Reads().TimeSlots().ListAvailableByCoach(ctx, coachID, uc.clock.Now())
}

// Delete removes a slot with no live session. A slot still referenced by
// cancelled sessions is retired instead of deleted.
func (uc *timeSlotUseCaseImpl) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		slot, err := tx.TimeSlots().FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrTimeSlotNotFound
			}
			return err
		}
		if !access.CanAccess(actor, slot) {
			return ErrForbidden
		}

		active, err := tx.Sessions().CountActiveBySlot(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrSlotInUse
		}

		refs, err := tx.Sessions().CountBySlot(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			slog.Info("time slot retired", "time_slot_id", id)
			return tx.TimeSlots().MarkUnavailable(ctx, id)
		}
		slog.Info("time slot deleted", "time_slot_id", id)
		return tx.TimeSlots().Delete(ctx, id)
	})
}

func (uc *timeSlotUseCaseImpl) FindAvailableByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	slot, err := uc.uow.Reads().TimeSlots().FindAvailableByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (uc *timeSlotUseCaseImpl) Claim(ctx context.Context, id uuid.UUID) error {
	return claimSlot(ctx, uc.uow.Reads().TimeSlots(), id)
}

func (uc *timeSlotUseCaseImpl) Release(ctx context.Context, id uuid.UUID) error {
	return uc.uow.Reads().TimeSlots().Release(ctx, id)
}

// claimSlot flips availability with one conditional update; losing the race
// is a conflict.
func claimSlot(ctx context.Context, repo shared.TimeSlotRepository, id uuid.UUID) error {
	ok, err := repo.Claim(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotAlreadyBooked
	}
	return nil
}
