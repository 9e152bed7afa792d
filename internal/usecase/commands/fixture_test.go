//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/bookingtype"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/domain/timeslot"
	"coach-booking/internal/domain/user"
	"coach-booking/internal/infra/calendar"
	"coach-booking/internal/infra/lock"
	"coach-booking/internal/infra/paypal"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/usecase/commands"
	"coach-booking/internal/usecase/queries"
	"coach-booking/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memstore.Store
	clock    *clock.MockClock
	gateway  *paypal.FakeGateway
	locker   *lock.LocalLocker
	provider *calendar.MockProvider
	cfg      config.BookingConfig

	sessions     commands.SessionCommands
	payments     commands.PaymentCommands
	discounts    commands.DiscountCommands
	slots        commands.TimeSlotCommands
	bookingTypes commands.BookingTypeCommands
	calendar     commands.CalendarCommands
	queries      queries.SessionQueries

	coach  access.Actor
	client access.Actor
	admin  access.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    memstore.New(),
		clock:    clock.NewMockClock(baseTime),
		gateway:  paypal.NewFakeGateway(),
		locker:   lock.NewLocalLocker(),
		provider: calendar.NewMockProvider(),
		cfg:      config.NewTestConfig().Booking,
		coach:    access.NewActor(uuid.New(), user.RoleCoach),
		client:   access.NewActor(uuid.New(), user.RoleUser),
		admin:    access.NewActor(uuid.New(), user.RoleAdmin),
	}
	f.store.AddUser(f.coach.UserID, "coach@example.com")
	f.store.AddUser(f.client.UserID, "client@example.com")

	f.queries = queries.NewSessionQueries(f.store)
	factory := session.NewFactory(f.clock, session.NewDefaultPriceCalculator())
	f.sessions = commands.NewSessionUseCase(f.store, factory, f.queries, f.gateway, f.clock, f.cfg)
	f.payments = commands.NewPaymentUseCase(f.store, f.queries, f.gateway, f.locker, f.clock, f.cfg, "USD")
	f.discounts = commands.NewDiscountUseCase(f.store, f.clock)
	f.slots = commands.NewTimeSlotUseCase(f.store, f.clock)
	f.bookingTypes = commands.NewBookingTypeUseCase(f.store, f.clock)
	f.calendar = commands.NewCalendarUseCase(f.store, f.queries, f.provider, f.clock)
	return f
}

func (f *fixture) bookingType(price string) *bookingtype.BookingType {
	f.t.Helper()
	bt, err := f.bookingTypes.Create(f.ctx, f.coach, commands.CreateBookingTypeInput{
		Name:        "Intro call",
		DurationMin: 60,
		BasePrice:   decimal.RequireFromString(price),
	})
	require.NoError(f.t, err)
	return bt
}

func (f *fixture) slot(hoursAhead int) *timeslot.TimeSlot {
	f.t.Helper()
	ts, err := f.slots.Create(f.ctx, f.coach, commands.CreateTimeSlotInput{
		Start:       baseTime.Add(time.Duration(hoursAhead) * time.Hour),
		DurationMin: 60,
	})
	require.NoError(f.t, err)
	return ts
}

func (f *fixture) discount(code, amount string, maxUsage int) {
	f.t.Helper()
	_, err := f.discounts.Create(f.ctx, f.coach, commands.CreateDiscountInput{
		Code:     code,
		Amount:   decimal.RequireFromString(amount),
		Expiry:   baseTime.Add(30 * 24 * time.Hour),
		MaxUsage: maxUsage,
	})
	require.NoError(f.t, err)
}

// book creates a session for the client at the given price.
func (f *fixture) book(price string) *queries.SessionView {
	f.t.Helper()
	bt := f.bookingType(price)
	ts := f.slot(48)
	res, err := f.sessions.Create(f.ctx, f.client, commands.CreateSessionInput{
		BookingTypeID: bt.ID(),
		TimeSlotID:    ts.ID(),
	}, uuid.Nil)
	require.NoError(f.t, err)
	return res.Session
}

// paid books a session and runs the full order and capture flow.
func (f *fixture) paid(price string) (*queries.SessionView, *commands.CaptureResult) {
	f.t.Helper()
	view := f.book(price)
	order, err := f.payments.CreateOrder(f.ctx, f.client, view.ID, decimal.Zero)
	require.NoError(f.t, err)
	res, err := f.payments.CaptureOrder(f.ctx, f.client, order.OrderID, view.ID)
	require.NoError(f.t, err)
	return view, res
}

func strPtr(s string) *string { return &s }
