package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/payment"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/infra"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/queries"
	"coach-booking/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const endpointCreateSession = "POST /api/sessions"

type CreateSessionInput struct {
	BookingTypeID uuid.UUID `json:"booking_type_id"`
	TimeSlotID    uuid.UUID `json:"time_slot_id"`
	DiscountCode  *string   `json:"discount_code,omitempty"`
}

type CreateSessionResult struct {
	Session    *queries.SessionView
	IsReplayed bool
}

type SessionCommands interface {
	// Create books a slot. A non-nil idempotency key makes retries of the same
	// request return the first result.
	Create(ctx context.Context, actor access.Actor, in CreateSessionInput, idempotencyKey uuid.UUID) (*CreateSessionResult, error)
	Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*queries.SessionView, error)
	UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, status string) (*queries.SessionView, error)
}

type sessionUseCaseImpl struct {
	uow     shared.UnitOfWork
	factory *session.Factory
	queries queries.SessionQueries
	gateway shared.PaymentGateway
	clock   clock.Clock
	cfg     config.BookingConfig
}

func NewSessionUseCase(
	uow shared.UnitOfWork,
	factory *session.Factory,
	sessionQueries queries.SessionQueries,
	gateway shared.PaymentGateway,
	clk clock.Clock,
	cfg config.BookingConfig,
) SessionCommands {
	return &sessionUseCaseImpl{
		uow:     uow,
		factory: factory,
		queries: sessionQueries,
		gateway: gateway,
		clock:   clk,
		cfg:     cfg,
	}
}

func (uc *sessionUseCaseImpl) Create(ctx context.Context, actor access.Actor, in CreateSessionInput, idempotencyKey uuid.UUID) (*CreateSessionResult, error) {
	if p, ok := actor.Participant(); !ok || p != access.Requester {
		return nil, ErrRequesterOnly
	}

	if idempotencyKey == uuid.Nil {
		return uc.create(ctx, actor, in, nil)
	}

	hash, err := hashRequest(in)
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash request")
	}
	rec := shared.IdempotencyRecord{
		Key:         idempotencyKey,
		UserID:      actor.UserID,
		Endpoint:    endpointCreateSession,
		RequestHash: hash,
		Status:      shared.IdempotencyProcessing,
		ExpiresAt:   uc.clock.Now().Add(uc.cfg.IdempotencyLeaseTTL),
	}

	replay, err := uc.reserveKey(ctx, rec)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	result, err := uc.create(ctx, actor, in, &rec)
	if err != nil {
		// Free the key so the client can retry after fixing the request.
		if delErr := uc.uow.Reads().Idempotency().Delete(ctx, rec.Key, rec.UserID); delErr != nil {
			slog.Warn("failed to release idempotency key", "key", rec.Key, "error", delErr)
		}
		return nil, err
	}
	return result, nil
}

// reserveKey returns a replayed result when the key already completed.
func (uc *sessionUseCaseImpl) reserveKey(ctx context.Context, rec shared.IdempotencyRecord) (*CreateSessionResult, error) {
	repo := uc.uow.Reads().Idempotency()

	inserted, err := repo.TryInsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}

	existing, err := repo.Get(ctx, rec.Key, rec.UserID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrIdempotencyInProgress
		}
		return nil, err
	}

	now := uc.clock.Now()
	if existing.ExpiresAt.Before(now) {
		claimed, err := repo.ClaimExpired(ctx, rec, now)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrIdempotencyInProgress
		}
		return nil, nil
	}

	if existing.RequestHash != rec.RequestHash || existing.Endpoint != rec.Endpoint {
		return nil, ErrIdempotencyMismatch
	}
	if existing.Status != shared.IdempotencyCompleted || existing.ResultSessionID == nil {
		return nil, ErrIdempotencyInProgress
	}

	view, err := uc.queries.GetByIDSystem(ctx, *existing.ResultSessionID)
	if err != nil {
		return nil, err
	}
	slog.Info("session create replayed", "key", rec.Key, "session_id", view.ID)
	return &CreateSessionResult{Session: view, IsReplayed: true}, nil
}

func (uc *sessionUseCaseImpl) create(ctx context.Context, actor access.Actor, in CreateSessionInput, rec *shared.IdempotencyRecord) (*CreateSessionResult, error) {
	var created *session.Session

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		bt, err := tx.BookingTypes().FindByID(ctx, in.BookingTypeID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingTypeNotFound
			}
			return err
		}
		slot, err := tx.TimeSlots().FindByID(ctx, in.TimeSlotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrTimeSlotNotFound
			}
			return err
		}
		if slot.CoachID() != bt.CoachID() {
			return ErrSlotCoachMismatch
		}

		now := uc.clock.Now()
		applied := session.NoDiscount()
		d, err := consumeInTx(ctx, tx, in.DiscountCode, now)
		if err != nil {
			return err
		}
		if d != nil {
			applied = session.WithDiscount(d.ID(), d.Code().String(), d.Amount())
		}

		s, err := uc.factory.NewSession(
			actor.UserID,
			session.BookingSpec{ID: bt.ID(), CoachID: bt.CoachID(), BasePrice: bt.BasePrice(), IsActive: bt.IsActive()},
			session.SlotSpec{ID: slot.ID(), Start: slot.Start(), DurationMin: slot.DurationMin(), IsAvailable: slot.IsAvailable()},
			applied,
		)
		if err != nil {
			return err
		}

		if err := claimSlot(ctx, tx.TimeSlots(), slot.ID()); err != nil {
			return err
		}
		if err := tx.Sessions().Create(ctx, s); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrSlotAlreadyBooked
			}
			return err
		}

		if err := enqueue(ctx, tx, TopicSessionBooked, sessionEvent(s, now), now); err != nil {
			return err
		}
		if rec != nil {
			if err := tx.Idempotency().MarkCompleted(ctx, rec.Key, rec.UserID, s.ID(), now.Add(uc.cfg.IdempotencyTTL)); err != nil {
				return err
			}
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("session booked",
		"session_id", created.ID(),
		"user_id", created.UserID(),
		"coach_id", created.CoachID(),
		"price", created.Price().String(),
	)

	view, err := uc.queries.GetByIDSystem(ctx, created.ID())
	if err != nil {
		return nil, err
	}
	return &CreateSessionResult{Session: view}, nil
}

func (uc *sessionUseCaseImpl) Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*queries.SessionView, error) {
	// The refund outcome survives transaction retries so the gateway is
	// called at most once per capture.
	refunded := map[uuid.UUID]*shared.Refund{}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if !access.CanAccess(actor, s) {
			return ErrForbidden
		}

		now := uc.clock.Now()
		if err := s.CanCancel(now); err != nil {
			return err
		}

		payments, err := tx.Payments().ListBySession(ctx, s.ID())
		if err != nil {
			return err
		}
		for _, p := range payments {
			if p.IsPending() && !p.IsStalePending(now, uc.cfg.PaymentPendingTTL) {
				return ErrPaymentInProgress
			}
		}
		for _, p := range payments {
			if err := uc.settleForCancel(ctx, tx, s, p, refunded, now); err != nil {
				return err
			}
		}

		if err := tx.TimeSlots().Release(ctx, s.TimeSlotID()); err != nil {
			return err
		}
		if err := s.Cancel(now); err != nil {
			return err
		}
		if err := tx.Sessions().UpdateStatus(ctx, s.ID(), s.Status(), now); err != nil {
			return err
		}
		return enqueue(ctx, tx, TopicSessionCancelled, sessionEvent(s, now), now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("session cancelled", "session_id", id, "actor_id", actor.UserID, "refunds", len(refunded))
	return uc.queries.GetByIDSystem(ctx, id)
}

// settleForCancel fails stale pending payments and refunds captured ones.
func (uc *sessionUseCaseImpl) settleForCancel(
	ctx context.Context,
	tx shared.Tx,
	s *session.Session,
	p *payment.Payment,
	refunded map[uuid.UUID]*shared.Refund,
	now time.Time,
) error {
	switch {
	case p.IsPending():
		if err := p.TransitionTo(payment.StatusFailed, now); err != nil {
			return err
		}
		slog.Info("stale pending payment failed", "payment_id", p.ID(), "session_id", s.ID())
		return tx.Payments().Update(ctx, p)

	case p.IsCompleted():
		if p.CaptureID() == nil {
			return ErrRefundFailed
		}
		r, ok := refunded[p.ID()]
		if !ok {
			var err error
			r, err = uc.gateway.RefundCapture(ctx, *p.CaptureID(), p.Amount(), p.Currency())
			if err != nil {
				slog.Error("refund failed", "payment_id", p.ID(), "capture_id", *p.CaptureID(), "error", err)
				return errs.WithCause(ErrRefundFailed, err)
			}
			if !r.Accepted() {
				slog.Error("refund rejected", "payment_id", p.ID(), "refund_id", r.ID, "status", r.Status)
				return ErrRefundFailed
			}
			refunded[p.ID()] = r
		}
		if err := p.TransitionTo(payment.StatusRefunded, now); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		return enqueue(ctx, tx, TopicPaymentRefunded, PaymentEvent{
			PaymentID:  p.ID(),
			SessionID:  s.ID(),
			OrderID:    deref(p.OrderID()),
			CaptureID:  deref(p.CaptureID()),
			Amount:     p.Amount(),
			Currency:   p.Currency(),
			OccurredAt: now,
		}, now)
	}
	return nil
}

func (uc *sessionUseCaseImpl) UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, raw string) (*queries.SessionView, error) {
	next, err := session.NewStatus(raw)
	if err != nil {
		return nil, err
	}
	if next == session.StatusCancelled {
		return nil, ErrUseCancel
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if !actor.IsAdmin() && !(actor.IsCoach() && s.CoachID() == actor.UserID) {
			return ErrForbidden
		}

		now := uc.clock.Now()
		if err := s.TransitionTo(next, now); err != nil {
			return err
		}
		if err := tx.Sessions().UpdateStatus(ctx, s.ID(), s.Status(), now); err != nil {
			return err
		}
		return enqueue(ctx, tx, TopicSessionStatus, sessionEvent(s, now), now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("session status updated", "session_id", id, "status", next, "actor_id", actor.UserID)
	return uc.queries.GetByIDSystem(ctx, id)
}

func sessionEvent(s *session.Session, now time.Time) SessionEvent {
	return SessionEvent{
		SessionID:  s.ID(),
		UserID:     s.UserID(),
		CoachID:    s.CoachID(),
		Status:     s.Status().String(),
		DateTime:   s.DateTime(),
		Price:      s.Price(),
		OccurredAt: now,
	}
}

func hashRequest(in CreateSessionInput) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
