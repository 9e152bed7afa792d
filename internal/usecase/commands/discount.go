package commands

import (
	"context"
	"log/slog"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/discount"
	"coach-booking/internal/infra"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateDiscountInput struct {
	Code     string
	Amount   decimal.Decimal
	Expiry   time.Time
	MaxUsage int
}

type UpdateDiscountInput struct {
	Amount   *decimal.Decimal
	Expiry   *time.Time
	MaxUsage *int
}

func (in UpdateDiscountInput) isEmpty() bool {
	return in.Amount == nil && in.Expiry == nil && in.MaxUsage == nil
}

type DiscountCommands interface {
	Create(ctx context.Context, actor access.Actor, in CreateDiscountInput) (*discount.Discount, error)
	Update(ctx context.Context, actor access.Actor, code string, in UpdateDiscountInput) (*discount.Discount, error)
	Delete(ctx context.Context, actor access.Actor, code string) error
	// Validate checks a code without consuming it. A non-nil coachID also
	// requires the code to belong to that coach.
	Validate(ctx context.Context, code string, coachID *uuid.UUID) (*discount.Discount, error)
	FindUsable(ctx context.Context, code string) (*discount.Discount, bool, error)
	Consume(ctx context.Context, code string) (bool, error)
}

type discountUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewDiscountUseCase(uow shared.UnitOfWork, clk clock.Clock) DiscountCommands {
	return &discountUseCaseImpl{uow: uow, clock: clk}
}

func (uc *discountUseCaseImpl) Create(ctx context.Context, actor access.Actor, in CreateDiscountInput) (*discount.Discount, error) {
	if !actor.IsCoach() {
		return nil, ErrCoachOnly
	}

	d, err := discount.NewDiscount(actor.UserID, in.Code, in.Amount, in.Expiry, in.MaxUsage, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.uow.Reads().Discounts().Create(ctx, d); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrDuplicateDiscountCode
		}
		return nil, err
	}

	slog.Info("discount created", "discount_id", d.ID(), "code", d.Code(), "coach_id", actor.UserID)
	return d, nil
}

func (uc *discountUseCaseImpl) Update(ctx context.Context, actor access.Actor, code string, in UpdateDiscountInput) (*discount.Discount, error) {
	if in.isEmpty() {
		return nil, ErrNoChanges
	}

	var updated *discount.Discount
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		d, err := uc.loadOwned(ctx, tx, actor, code)
		if err != nil {
			return err
		}
		if err := d.Apply(discount.Changes{Amount: in.Amount, Expiry: in.Expiry, MaxUsage: in.MaxUsage}, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Discounts().Update(ctx, d); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *discountUseCaseImpl) Delete(ctx context.Context, actor access.Actor, code string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		d, err := uc.loadOwned(ctx, tx, actor, code)
		if err != nil {
			return err
		}
		ok, err := tx.Discounts().Deactivate(ctx, d.Code(), uc.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrDiscountNotFound
		}
		slog.Info("discount deactivated", "discount_id", d.ID(), "code", d.Code())
		return nil
	})
}

// loadOwned hides inactive codes behind NotFound for everyone, owner included.
func (uc *discountUseCaseImpl) loadOwned(ctx context.Context, tx shared.Tx, actor access.Actor, raw string) (*discount.Discount, error) {
	code, err := discount.NewCode(raw)
	if err != nil {
		return nil, ErrDiscountNotFound
	}
	d, err := tx.Discounts().FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	if !d.IsActive() {
		return nil, ErrDiscountNotFound
	}
	if !actor.IsAdmin() && !d.OwnedBy(actor.UserID) {
		return nil, ErrNotDiscountOwner
	}
	return d, nil
}

func (uc *discountUseCaseImpl) Validate(ctx context.Context, raw string, coachID *uuid.UUID) (*discount.Discount, error) {
	code, err := discount.NewCode(raw)
	if err != nil {
		return nil, discount.ErrInvalidOrExpiredCode
	}
	d, err := uc.uow.Reads().Discounts().FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, discount.ErrInvalidOrExpiredCode
		}
		return nil, err
	}
	if coachID != nil && !d.OwnedBy(*coachID) {
		return nil, discount.ErrInvalidOrExpiredCode
	}
	if err := d.Eligibility(uc.clock.Now()); err != nil {
		return nil, err
	}
	return d, nil
}

func (uc *discountUseCaseImpl) FindUsable(ctx context.Context, raw string) (*discount.Discount, bool, error) {
	d, err := uc.Validate(ctx, raw, nil)
	if err != nil {
		if errs.KindOf(err) == errs.KindBadRequest {
			return nil, false, nil
		}
		return nil, false, err
	}
	return d, true, nil
}

func (uc *discountUseCaseImpl) Consume(ctx context.Context, raw string) (bool, error) {
	code, err := discount.NewCode(raw)
	if err != nil {
		return false, nil
	}
	_, ok, err := uc.uow.Reads().Discounts().Consume(ctx, code, uc.clock.Now())
	return ok, err
}

// consumeInTx is the booking path: an unknown or unusable code means full
// price, never an error.
func consumeInTx(ctx context.Context, tx shared.Tx, raw *string, now time.Time) (*discount.Discount, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	code, err := discount.NewCode(*raw)
	if err != nil {
		return nil, nil
	}
	d, ok, err := tx.Discounts().Consume(ctx, code, now)
	if err != nil || !ok {
		return nil, err
	}
	return d, nil
}
