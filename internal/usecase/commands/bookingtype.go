package commands

import (
	"context"
	"log/slog"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/bookingtype"
	"coach-booking/internal/infra"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateBookingTypeInput struct {
	Name        string
	DurationMin int
	BasePrice   decimal.Decimal
}

type BookingTypeCommands interface {
	Create(ctx context.Context, actor access.Actor, in CreateBookingTypeInput) (*bookingtype.BookingType, error)
	ListActive(ctx context.Context, coachID uuid.UUID) ([]*bookingtype.BookingType, error)
	Deactivate(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type bookingTypeUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewBookingTypeUseCase(uow shared.UnitOfWork, clk clock.Clock) BookingTypeCommands {
	return &bookingTypeUseCaseImpl{uow: uow, clock: clk}
}

func (uc *bookingTypeUseCaseImpl) Create(ctx context.Context, actor access.Actor, in CreateBookingTypeInput) (*bookingtype.BookingType, error) {
	if !actor.IsCoach() {
		return nil, ErrCoachOnly
	}
	bt, err := bookingtype.NewBookingType(actor.UserID, in.Name, in.DurationMin, in.BasePrice, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.uow.Reads().BookingTypes().Create(ctx, bt); err != nil {
		return nil, err
	}
	slog.Info("booking type created", "booking_type_id", bt.ID(), "coach_id", actor.UserID)
	return bt, nil
}

func (uc *bookingTypeUseCaseImpl) ListActive(ctx context.Context, coachID uuid.UUID) ([]*bookingtype.BookingType, error) {
	return uc.uow.Reads().BookingTypes().ListActiveByCoach(ctx, coachID)
}

func (uc *bookingTypeUseCaseImpl) Deactivate(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		bt, err := tx.BookingTypes().FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingTypeNotFound
			}
			return err
		}
		if !access.CanAccess(actor, bt) {
			return ErrForbidden
		}
		return tx.BookingTypes().Deactivate(ctx, id)
	})
}
