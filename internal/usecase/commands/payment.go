package commands

import (
	"context"
	"fmt"
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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderResult struct {
	OrderID     string
	ApprovalURL string
	PaymentID   uuid.UUID
}

type CaptureResult struct {
	OrderID         string
	CaptureID       string
	PaymentID       uuid.UUID
	SessionID       uuid.UUID
	Status          string
	AlreadyCaptured bool
}

type PaymentCommands interface {
	// CreateOrder opens a gateway order for the session price. A zero amount
	// means "whatever the session costs".
	CreateOrder(ctx context.Context, actor access.Actor, sessionID uuid.UUID, amount decimal.Decimal) (*OrderResult, error)
	CaptureOrder(ctx context.Context, actor access.Actor, orderID string, sessionID uuid.UUID) (*CaptureResult, error)
	UpdatePaymentStatus(ctx context.Context, actor access.Actor, paymentID uuid.UUID, status string) (*payment.Payment, error)
}

type paymentUseCaseImpl struct {
	uow      shared.UnitOfWork
	queries  queries.SessionQueries
	gateway  shared.PaymentGateway
	locker   shared.Locker
	clock    clock.Clock
	cfg      config.BookingConfig
	currency string
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	sessionQueries queries.SessionQueries,
	gateway shared.PaymentGateway,
	locker shared.Locker,
	clk clock.Clock,
	cfg config.BookingConfig,
	currency string,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:      uow,
		queries:  sessionQueries,
		gateway:  gateway,
		locker:   locker,
		clock:    clk,
		cfg:      cfg,
		currency: currency,
	}
}

func (uc *paymentUseCaseImpl) CreateOrder(ctx context.Context, actor access.Actor, sessionID uuid.UUID, amount decimal.Decimal) (*OrderResult, error) {
	view, err := uc.queries.FindOne(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if view.UserID != actor.UserID {
		return nil, ErrSessionNotOwned
	}

	var (
		s *session.Session
		p *payment.Payment
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		s, err = tx.Sessions().FindByIDForUpdate(ctx, sessionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if err := s.CanPay(); err != nil {
			return err
		}

		price := s.Price()
		if !amount.IsZero() && !amount.Equal(price) {
			return ErrAmountMismatch
		}
		if !price.IsPositive() {
			return ErrNothingToPay
		}

		now := uc.clock.Now()
		if err := uc.retireOpenOrders(ctx, tx, s.ID(), now); err != nil {
			return err
		}
		p, err = payment.NewPayment(s.ID(), actor.UserID, price, uc.currency, now)
		if err != nil {
			return err
		}
		return tx.Payments().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	price := p.Amount()

	order, err := uc.gateway.CreateOrder(ctx, shared.OrderRequest{
		ReferenceID: s.ID().String(),
		Amount:      price,
		Currency:    uc.currency,
		Description: fmt.Sprintf("%s session on %s", view.BookingTypeName, s.DateTime().UTC().Format(time.RFC3339)),
	})
	if err != nil {
		slog.Error("order creation failed", "payment_id", p.ID(), "session_id", s.ID(), "error", err)
		uc.failPayment(ctx, p)
		return nil, errs.WithCause(ErrOrderCreationFailed, err)
	}

	p.AttachOrder(order.ID, uc.clock.Now())
	if err := uc.uow.Reads().Payments().Update(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("payment order created", "payment_id", p.ID(), "order_id", order.ID, "session_id", s.ID(), "amount", price.String())
	return &OrderResult{OrderID: order.ID, ApprovalURL: order.ApprovalURL, PaymentID: p.ID()}, nil
}

// retireOpenOrders allows one open order per session. A fresh PENDING order
// blocks a new one; an abandoned one is failed so it can no longer be captured.
func (uc *paymentUseCaseImpl) retireOpenOrders(ctx context.Context, tx shared.Tx, sessionID uuid.UUID, now time.Time) error {
	payments, err := tx.Payments().ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if !p.IsPending() {
			continue
		}
		if !p.IsStalePending(now, uc.cfg.PaymentPendingTTL) {
			return ErrPaymentInProgress
		}
		if err := p.TransitionTo(payment.StatusFailed, now); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		slog.Info("abandoned order failed", "payment_id", p.ID(), "order_id", deref(p.OrderID()), "session_id", sessionID)
	}
	return nil
}

func (uc *paymentUseCaseImpl) CaptureOrder(ctx context.Context, actor access.Actor, orderID string, sessionID uuid.UUID) (*CaptureResult, error) {
	view, err := uc.queries.FindOne(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if view.UserID != actor.UserID {
		return nil, ErrSessionNotOwned
	}

	lockKey := "capture:" + orderID
	token, ok, err := uc.locker.TryLock(ctx, lockKey, uc.cfg.CaptureLockTTL)
	if err != nil {
		return nil, errs.Wrap(err, "failed to acquire capture lock")
	}
	if !ok {
		return nil, ErrCaptureInProgress
	}
	defer func() {
		if err := uc.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			slog.Warn("failed to release capture lock", "order_id", orderID, "error", err)
		}
	}()

	existing, err := uc.uow.Reads().Payments().FindByOrderID(ctx, orderID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.SessionID() != sessionID {
			return nil, ErrPaymentSessionMismatch
		}
		if existing.IsCompleted() {
			return priorCapture(orderID, existing), nil
		}
		if existing.IsSettledNegatively() {
			return nil, ErrCaptureFailed
		}
	}
	if view.IsPaid {
		if existing != nil {
			// Another order already paid for the session; this one must never be taken.
			uc.failPayment(ctx, existing)
			return nil, session.ErrAlreadyPaid
		}
		return uc.priorCaptureForSession(ctx, orderID, view)
	}
	if view.Status == session.StatusCancelled.String() {
		uc.failPayment(ctx, existing)
		return nil, session.ErrCancelled
	}

	capture, err := uc.gateway.CaptureOrder(ctx, orderID)
	if err != nil || capture.Status != shared.GatewayStatusCompleted {
		uc.failPayment(ctx, existing)
		if err != nil {
			slog.Error("capture failed", "order_id", orderID, "session_id", sessionID, "error", err)
			return nil, errs.WithCause(ErrCaptureFailed, err)
		}
		slog.Error("capture not completed", "order_id", orderID, "session_id", sessionID, "status", capture.Status)
		return nil, ErrCaptureFailed
	}

	expected, currency := view.Price, uc.currency
	if existing != nil {
		expected, currency = existing.Amount(), existing.Currency()
	}
	if !capture.Matches(expected, currency) {
		slog.Error("captured amount differs from the session price",
			"order_id", orderID,
			"capture_id", capture.CaptureID,
			"session_id", sessionID,
			"captured", capture.Amount.String()+" "+capture.Currency,
			"expected", expected.String()+" "+currency,
		)
		uc.reverseCapture(ctx, orderID, sessionID, view.UserID, capture)
		return nil, ErrCaptureAmountMismatch
	}

	var settled *payment.Payment
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()

		p, err := tx.Payments().FindByOrderID(ctx, orderID)
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			p = payment.NewCompletedPayment(sessionID, view.UserID, capture.Amount, capture.Currency, orderID, capture.CaptureID, now)
			if err := tx.Payments().Create(ctx, p); err != nil {
				return err
			}
		case err != nil:
			return err
		case !p.IsPending():
			return ErrPaymentClosedDuringCapture
		default:
			if err := p.Complete(capture.CaptureID, now); err != nil {
				return err
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
		}

		marked, err := tx.Sessions().MarkPaid(ctx, sessionID, p.ID(), now)
		if err != nil {
			return err
		}
		if !marked {
			s, err := tx.Sessions().FindByID(ctx, sessionID)
			if err != nil {
				return err
			}
			if s.IsCancelled() {
				return ErrSessionCancelledDuringCapture
			}
			return session.ErrAlreadyPaid
		}

		if err := tx.TimeSlots().MarkUnavailable(ctx, view.TimeSlotID); err != nil {
			return err
		}
		if err := enqueue(ctx, tx, TopicPaymentCaptured, PaymentEvent{
			PaymentID:  p.ID(),
			SessionID:  sessionID,
			OrderID:    orderID,
			CaptureID:  capture.CaptureID,
			Amount:     p.Amount(),
			Currency:   p.Currency(),
			OccurredAt: now,
		}, now); err != nil {
			return err
		}
		settled = p
		return nil
	})
	if err != nil {
		slog.Error("captured order not settled locally",
			"order_id", orderID,
			"capture_id", capture.CaptureID,
			"session_id", sessionID,
			"error", err,
		)
		uc.reverseCapture(ctx, orderID, sessionID, view.UserID, capture)
		return nil, err
	}

	slog.Info("payment captured", "payment_id", settled.ID(), "order_id", orderID, "capture_id", capture.CaptureID, "session_id", sessionID)
	return &CaptureResult{
		OrderID:   orderID,
		CaptureID: capture.CaptureID,
		PaymentID: settled.ID(),
		SessionID: sessionID,
		Status:    settled.Status().String(),
	}, nil
}

func (uc *paymentUseCaseImpl) priorCaptureForSession(ctx context.Context, orderID string, view *queries.SessionView) (*CaptureResult, error) {
	res := &CaptureResult{
		OrderID:         orderID,
		SessionID:       view.ID,
		Status:          payment.StatusCompleted.String(),
		AlreadyCaptured: true,
	}
	if view.PaymentID == nil {
		return res, nil
	}
	p, err := uc.uow.Reads().Payments().FindByID(ctx, *view.PaymentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return res, nil
		}
		return nil, err
	}
	res.PaymentID = p.ID()
	res.CaptureID = deref(p.CaptureID())
	return res, nil
}

func priorCapture(orderID string, p *payment.Payment) *CaptureResult {
	return &CaptureResult{
		OrderID:         orderID,
		CaptureID:       deref(p.CaptureID()),
		PaymentID:       p.ID(),
		SessionID:       p.SessionID(),
		Status:          p.Status().String(),
		AlreadyCaptured: true,
	}
}

// reverseCapture hands back funds the gateway took for a capture that cannot
// be settled locally. The payment row ends REFUNDED, or FAILED with the
// capture id kept when the refund itself fails, and is never left PENDING.
func (uc *paymentUseCaseImpl) reverseCapture(ctx context.Context, orderID string, sessionID, userID uuid.UUID, capture *shared.Capture) {
	ctx = context.WithoutCancel(ctx)

	refunded := false
	r, err := uc.gateway.RefundCapture(ctx, capture.CaptureID, capture.Amount, capture.Currency)
	switch {
	case err != nil:
		slog.Error("captured funds need a manual refund", "order_id", orderID, "capture_id", capture.CaptureID, "error", err)
	case !r.Accepted():
		slog.Error("captured funds need a manual refund", "order_id", orderID, "capture_id", capture.CaptureID, "refund_status", r.Status)
	default:
		refunded = true
		slog.Warn("unsettled capture refunded", "order_id", orderID, "capture_id", capture.CaptureID, "refund_id", r.ID)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()

		p, err := tx.Payments().FindByOrderID(ctx, orderID)
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			p = payment.NewCompletedPayment(sessionID, userID, capture.Amount, capture.Currency, orderID, capture.CaptureID, now)
			p.Reverse(capture.CaptureID, refunded, now)
			if err := tx.Payments().Create(ctx, p); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			p.Reverse(capture.CaptureID, refunded, now)
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
		}

		if !refunded {
			return nil
		}
		return enqueue(ctx, tx, TopicPaymentRefunded, PaymentEvent{
			PaymentID:  p.ID(),
			SessionID:  p.SessionID(),
			OrderID:    orderID,
			CaptureID:  capture.CaptureID,
			Amount:     capture.Amount,
			Currency:   capture.Currency,
			OccurredAt: now,
		}, now)
	})
	if err != nil {
		slog.Error("failed to record reversed capture", "order_id", orderID, "capture_id", capture.CaptureID, "error", err)
	}
}

// failPayment records a gateway failure; a nil or settled payment is left alone.
func (uc *paymentUseCaseImpl) failPayment(ctx context.Context, p *payment.Payment) {
	if p == nil || !p.IsPending() {
		return
	}
	if err := p.TransitionTo(payment.StatusFailed, uc.clock.Now()); err != nil {
		return
	}
	if err := uc.uow.Reads().Payments().Update(context.WithoutCancel(ctx), p); err != nil {
		slog.Error("failed to mark payment failed", "payment_id", p.ID(), "error", err)
	}
}

func (uc *paymentUseCaseImpl) UpdatePaymentStatus(ctx context.Context, actor access.Actor, paymentID uuid.UUID, raw string) (*payment.Payment, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	next, err := payment.NewStatus(raw)
	if err != nil {
		return nil, err
	}

	var updated *payment.Payment
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if err := p.Override(next, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Warn("payment status overridden", "payment_id", paymentID, "status", next, "admin_id", actor.UserID)
	return updated, nil
}
