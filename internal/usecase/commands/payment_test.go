//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/payment"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/domain/user"
	"coach-booking/internal/usecase/commands"
	"coach-booking/internal/usecase/queries"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CreateOrder
// =============================================================================

func TestPaymentCommands_CreateOrder(t *testing.T) {
	t.Run("success: opens a pending payment for the session price", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("75.50")

		res, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)

		require.NoError(t, err)
		assert.NotEmpty(t, res.OrderID)
		assert.Contains(t, res.ApprovalURL, res.OrderID)

		ps := f.store.PaymentsOf(view.ID)
		require.Len(t, ps, 1)
		assert.Equal(t, res.PaymentID, ps[0].ID())
		assert.Equal(t, payment.StatusPending, ps[0].Status())
		assert.True(t, ps[0].Amount().Equal(decimal.RequireFromString("75.5")))
		require.NotNil(t, ps[0].OrderID())
		assert.Equal(t, res.OrderID, *ps[0].OrderID())
	})

	t.Run("success: explicit amount equal to the price", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("40")

		_, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.RequireFromString("40.00"))

		assert.NoError(t, err)
	})

	t.Run("error: gateway failure marks the payment failed", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("40")
		f.gateway.FailCreate = true

		_, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)

		assert.ErrorIs(t, err, commands.ErrOrderCreationFailed)
		ps := f.store.PaymentsOf(view.ID)
		require.Len(t, ps, 1)
		assert.Equal(t, payment.StatusFailed, ps[0].Status())
	})

	t.Run("error: second order while one is open", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("40")
		_, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)

		_, err = f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)

		assert.ErrorIs(t, err, commands.ErrPaymentInProgress)
		assert.Len(t, f.store.PaymentsOf(view.ID), 1)
		created, _, _ := f.gateway.Calls()
		assert.Equal(t, 1, created)
	})

	t.Run("success: abandoned order is failed and replaced", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("40")
		first, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		f.clock.Add(f.cfg.PaymentPendingTTL)

		second, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)

		require.NoError(t, err)
		ps := f.store.PaymentsOf(view.ID)
		require.Len(t, ps, 2)
		assert.Equal(t, first.PaymentID, ps[0].ID())
		assert.Equal(t, payment.StatusFailed, ps[0].Status())
		assert.Equal(t, second.PaymentID, ps[1].ID())
		assert.Equal(t, payment.StatusPending, ps[1].Status())

		// the abandoned order can no longer take money
		_, err = f.payments.CaptureOrder(f.ctx, f.client, first.OrderID, view.ID)
		assert.ErrorIs(t, err, commands.ErrCaptureFailed)
		_, captures, _ := f.gateway.Calls()
		assert.Equal(t, 0, captures)
	})

	testCases := []struct {
		name      string
		price     string
		actor     func(f *fixture) access.Actor
		amount    string
		prepare   func(f *fixture, v *queries.SessionView)
		expectErr error
	}{
		{
			name:      "error: amount differs from the price",
			price:     "40",
			actor:     func(f *fixture) access.Actor { return f.client },
			amount:    "39.99",
			expectErr: commands.ErrAmountMismatch,
		},
		{
			name:      "error: free session",
			price:     "0",
			actor:     func(f *fixture) access.Actor { return f.client },
			expectErr: commands.ErrNothingToPay,
		},
		{
			name:      "error: coach is not the payer",
			price:     "40",
			actor:     func(f *fixture) access.Actor { return f.coach },
			expectErr: commands.ErrSessionNotOwned,
		},
		{
			name:      "error: another client",
			price:     "40",
			actor:     func(*fixture) access.Actor { return access.NewActor(uuid.New(), user.RoleUser) },
			expectErr: queries.ErrSessionAccess,
		},
		{
			name:  "error: cancelled session",
			price: "40",
			actor: func(f *fixture) access.Actor { return f.client },
			prepare: func(f *fixture, v *queries.SessionView) {
				_, err := f.sessions.Cancel(f.ctx, f.client, v.ID)
				require.NoError(f.t, err)
			},
			expectErr: session.ErrCancelled,
		},
		{
			name:  "error: already paid",
			price: "40",
			actor: func(f *fixture) access.Actor { return f.client },
			prepare: func(f *fixture, v *queries.SessionView) {
				order, err := f.payments.CreateOrder(f.ctx, f.client, v.ID, decimal.Zero)
				require.NoError(f.t, err)
				_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, v.ID)
				require.NoError(f.t, err)
			},
			expectErr: session.ErrAlreadyPaid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			view := f.book(tc.price)
			if tc.prepare != nil {
				tc.prepare(f, view)
			}
			amount := decimal.Zero
			if tc.amount != "" {
				amount = decimal.RequireFromString(tc.amount)
			}

			_, err := f.payments.CreateOrder(f.ctx, tc.actor(f), view.ID, amount)

			assert.ErrorIs(t, err, tc.expectErr)
		})
	}

	t.Run("error: unknown session", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.payments.CreateOrder(f.ctx, f.client, uuid.New(), decimal.Zero)
		assert.ErrorIs(t, err, queries.ErrSessionNotFound)
	})
}

// =============================================================================
// CaptureOrder
// =============================================================================

func TestPaymentCommands_CaptureOrder(t *testing.T) {
	t.Run("success: marks the session paid and retires the slot", func(t *testing.T) {
		f := newFixture(t)
		view, res := f.paid("100")

		assert.False(t, res.AlreadyCaptured)
		assert.Equal(t, "COMPLETED", res.Status)
		assert.NotEmpty(t, res.CaptureID)

		s, _ := f.store.Session(view.ID)
		assert.True(t, s.IsPaid())
		require.NotNil(t, s.PaymentID())
		assert.Equal(t, res.PaymentID, *s.PaymentID())
		slot, _ := f.store.Slot(view.TimeSlotID)
		assert.False(t, slot.IsAvailable())
		assert.Contains(t, f.store.JobTopics(), commands.TopicPaymentCaptured)
	})

	t.Run("success: repeated capture returns the first result", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)

		first, err := f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)
		require.NoError(t, err)
		second, err := f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)
		require.NoError(t, err)

		assert.True(t, second.AlreadyCaptured)
		assert.Equal(t, first.CaptureID, second.CaptureID)
		assert.Equal(t, first.PaymentID, second.PaymentID)
		_, captures, _ := f.gateway.Calls()
		assert.Equal(t, 1, captures)
	})

	t.Run("success: order unknown locally is recorded on capture", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		f.gateway.RegisterOrder("EXTERNAL-ORDER", decimal.RequireFromString("100.00"), "USD")

		res, err := f.payments.CaptureOrder(f.ctx, f.client, "EXTERNAL-ORDER", view.ID)

		require.NoError(t, err)
		ps := f.store.PaymentsOf(view.ID)
		require.Len(t, ps, 1)
		assert.Equal(t, res.PaymentID, ps[0].ID())
		assert.Equal(t, payment.StatusCompleted, ps[0].Status())
		assert.True(t, ps[0].Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("success: other order for a paid session reports the existing capture", func(t *testing.T) {
		f := newFixture(t)
		view, first := f.paid("100")

		res, err := f.payments.CaptureOrder(f.ctx, f.client, "SOME-OTHER-ORDER", view.ID)

		require.NoError(t, err)
		assert.True(t, res.AlreadyCaptured)
		assert.Equal(t, first.PaymentID, res.PaymentID)
		_, captures, _ := f.gateway.Calls()
		assert.Equal(t, 1, captures)
	})

	t.Run("error: capture already in progress", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		_, ok, err := f.locker.TryLock(f.ctx, "capture:"+order.OrderID, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)

		assert.ErrorIs(t, err, commands.ErrCaptureInProgress)
		_, captures, _ := f.gateway.Calls()
		assert.Equal(t, 0, captures)
	})

	t.Run("error: gateway failure fails the payment and blocks retries", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		f.gateway.FailCapture = true

		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)
		require.ErrorIs(t, err, commands.ErrCaptureFailed)
		assert.Equal(t, payment.StatusFailed, f.store.PaymentsOf(view.ID)[0].Status())

		f.gateway.FailCapture = false
		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)
		assert.ErrorIs(t, err, commands.ErrCaptureFailed)
		s, _ := f.store.Session(view.ID)
		assert.False(t, s.IsPaid())
	})

	t.Run("error: capture not completed by the gateway", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		f.gateway.CaptureStatus = "DECLINED"

		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)

		assert.ErrorIs(t, err, commands.ErrCaptureFailed)
		assert.Equal(t, payment.StatusFailed, f.store.PaymentsOf(view.ID)[0].Status())
	})

	t.Run("error: order belongs to another session", func(t *testing.T) {
		f := newFixture(t)
		a := f.book("100")
		b := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, a.ID, decimal.Zero)
		require.NoError(t, err)

		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, b.ID)

		assert.ErrorIs(t, err, commands.ErrPaymentSessionMismatch)
	})

	t.Run("error: cancelled session is not captured", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		_, err := f.sessions.Cancel(f.ctx, f.client, view.ID)
		require.NoError(t, err)

		_, err = f.payments.CaptureOrder(f.ctx, f.client, "LATE-ORDER", view.ID)

		assert.ErrorIs(t, err, session.ErrCancelled)
		_, captures, _ := f.gateway.Calls()
		assert.Equal(t, 0, captures)
	})

	t.Run("error: second order of a paid session is never captured", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		first, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		// an order opened alongside the first one, e.g. from another device
		parallel, err := payment.NewPayment(view.ID, f.client.UserID, decimal.NewFromInt(100), "USD", baseTime)
		require.NoError(t, err)
		parallel.AttachOrder("PARALLEL-ORDER", baseTime)
		require.NoError(t, f.store.Payments().Create(f.ctx, parallel))
		f.gateway.RegisterOrder("PARALLEL-ORDER", decimal.NewFromInt(100), "USD")

		_, err = f.payments.CaptureOrder(f.ctx, f.client, first.OrderID, view.ID)
		require.NoError(t, err)
		_, err = f.payments.CaptureOrder(f.ctx, f.client, "PARALLEL-ORDER", view.ID)

		assert.ErrorIs(t, err, session.ErrAlreadyPaid)
		_, captures, _ := f.gateway.Calls()
		assert.Equal(t, 1, captures)
		got, err := f.store.Payments().FindByID(f.ctx, parallel.ID())
		require.NoError(t, err)
		assert.Equal(t, payment.StatusFailed, got.Status())
	})

	t.Run("error: captured amount differs from the session price", func(t *testing.T) {
		testCases := []struct {
			name     string
			amount   string
			currency string
		}{
			{name: "smaller amount", amount: "1.00", currency: "USD"},
			{name: "other currency", amount: "100.00", currency: "EUR"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				view := f.book("100")
				f.gateway.RegisterOrder("CLIENT-ORDER", decimal.RequireFromString(tc.amount), tc.currency)

				_, err := f.payments.CaptureOrder(f.ctx, f.client, "CLIENT-ORDER", view.ID)

				assert.ErrorIs(t, err, commands.ErrCaptureAmountMismatch)
				s, _ := f.store.Session(view.ID)
				assert.False(t, s.IsPaid())
				ps := f.store.PaymentsOf(view.ID)
				require.Len(t, ps, 1)
				assert.Equal(t, payment.StatusRefunded, ps[0].Status())
				require.NotNil(t, ps[0].CaptureID())
				assert.True(t, f.gateway.Refunded(*ps[0].CaptureID()).Equal(decimal.RequireFromString(tc.amount)))
				assert.Contains(t, f.store.JobTopics(), commands.TopicPaymentRefunded)
			})
		}
	})

	t.Run("error: session cancelled while the gateway captured", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		gw := &interruptingGateway{PaymentGateway: f.gateway, onCapture: func() {
			err := f.store.Within(f.ctx, func(ctx context.Context, tx shared.Tx) error {
				return tx.Sessions().UpdateStatus(ctx, view.ID, session.StatusCancelled, baseTime)
			})
			require.NoError(t, err)
		}}
		uc := commands.NewPaymentUseCase(f.store, f.queries, gw, f.locker, f.clock, f.cfg, "USD")
		order, err := uc.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)

		_, err = uc.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)

		assert.ErrorIs(t, err, commands.ErrSessionCancelledDuringCapture)
		p := f.store.PaymentsOf(view.ID)[0]
		assert.Equal(t, payment.StatusRefunded, p.Status())
		require.NotNil(t, p.CaptureID())
		assert.True(t, f.gateway.Refunded(*p.CaptureID()).Equal(decimal.NewFromInt(100)))
		assert.Contains(t, f.store.JobTopics(), commands.TopicPaymentRefunded)
	})

	t.Run("error: stale payment failed by a cancel while the gateway captured", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		gw := &interruptingGateway{PaymentGateway: f.gateway, onCapture: func() {
			f.clock.Add(f.cfg.PaymentPendingTTL)
			_, err := f.sessions.Cancel(f.ctx, f.client, view.ID)
			require.NoError(t, err)
		}}
		uc := commands.NewPaymentUseCase(f.store, f.queries, gw, f.locker, f.clock, f.cfg, "USD")
		order, err := uc.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)

		_, err = uc.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)

		assert.ErrorIs(t, err, commands.ErrPaymentClosedDuringCapture)
		p := f.store.PaymentsOf(view.ID)[0]
		assert.Equal(t, payment.StatusRefunded, p.Status())
		require.NotNil(t, p.CaptureID())
		_, _, refunds := f.gateway.Calls()
		assert.Equal(t, 1, refunds)
		s, _ := f.store.Session(view.ID)
		assert.Equal(t, session.StatusCancelled, s.Status())
		assert.False(t, s.IsPaid())
	})

	t.Run("error: failed settlement refunds the capture", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		f.store.FailCommit = errors.New("connection reset")

		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)

		require.Error(t, err)
		p := f.store.PaymentsOf(view.ID)[0]
		assert.Equal(t, payment.StatusRefunded, p.Status())
		require.NotNil(t, p.CaptureID())
		s, _ := f.store.Session(view.ID)
		assert.False(t, s.IsPaid())
		slot, _ := f.store.Slot(view.TimeSlotID)
		assert.False(t, slot.IsAvailable(), "slot stays held by the booked session")
	})

	t.Run("error: failed settlement and refund keeps the capture for reconciliation", func(t *testing.T) {
		f := newFixture(t)
		view := f.book("100")
		order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
		require.NoError(t, err)
		f.store.FailCommit = errors.New("connection reset")
		f.gateway.FailRefund = true

		_, err = f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)

		require.Error(t, err)
		p := f.store.PaymentsOf(view.ID)[0]
		assert.Equal(t, payment.StatusFailed, p.Status())
		require.NotNil(t, p.CaptureID())
		assert.NotContains(t, f.store.JobTopics(), commands.TopicPaymentRefunded)
	})
}

// interruptingGateway runs onCapture between the gateway capture and the
// local settlement.
type interruptingGateway struct {
	shared.PaymentGateway
	onCapture func()
}

func (g *interruptingGateway) CaptureOrder(ctx context.Context, orderID string) (*shared.Capture, error) {
	c, err := g.PaymentGateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	g.onCapture()
	return c, nil
}

// =============================================================================
// UpdatePaymentStatus
// =============================================================================

func TestPaymentCommands_UpdatePaymentStatus(t *testing.T) {
	t.Run("success: admin overrides any status", func(t *testing.T) {
		f := newFixture(t)
		_, capture := f.paid("100")

		got, err := f.payments.UpdatePaymentStatus(f.ctx, f.admin, capture.PaymentID, "PENDING")

		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, got.Status())
	})

	testCases := []struct {
		name      string
		actor     func(f *fixture) access.Actor
		id        func(res *commands.CaptureResult) uuid.UUID
		status    string
		expectErr error
	}{
		{
			name:      "error: coach is not an admin",
			actor:     func(f *fixture) access.Actor { return f.coach },
			id:        func(res *commands.CaptureResult) uuid.UUID { return res.PaymentID },
			status:    "REFUNDED",
			expectErr: commands.ErrAdminOnly,
		},
		{
			name:      "error: unknown payment",
			actor:     func(f *fixture) access.Actor { return f.admin },
			id:        func(*commands.CaptureResult) uuid.UUID { return uuid.New() },
			status:    "REFUNDED",
			expectErr: commands.ErrPaymentNotFound,
		},
		{
			name:      "error: invalid status",
			actor:     func(f *fixture) access.Actor { return f.admin },
			id:        func(res *commands.CaptureResult) uuid.UUID { return res.PaymentID },
			status:    "VOID",
			expectErr: payment.ErrInvalidStatus,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, capture := f.paid("100")

			_, err := f.payments.UpdatePaymentStatus(f.ctx, tc.actor(f), tc.id(capture), tc.status)

			assert.ErrorIs(t, err, tc.expectErr)
		})
	}
}
