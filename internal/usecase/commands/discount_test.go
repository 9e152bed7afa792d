//go:build unit

package commands_test

import (
	"sync"
	"testing"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/discount"
	"coach-booking/internal/domain/user"
	"coach-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountCommands_Create(t *testing.T) {
	valid := func() commands.CreateDiscountInput {
		return commands.CreateDiscountInput{
			Code:     "spring25",
			Amount:   decimal.RequireFromString("25"),
			Expiry:   baseTime.Add(24 * time.Hour),
			MaxUsage: 10,
		}
	}

	t.Run("success: code is normalized", func(t *testing.T) {
		f := newFixture(t)

		d, err := f.discounts.Create(f.ctx, f.coach, valid())

		require.NoError(t, err)
		assert.Equal(t, discount.Code("SPRING25"), d.Code())
		assert.Equal(t, f.coach.UserID, d.CoachID())
		assert.Equal(t, 0, d.UseCount())
	})

	t.Run("error: duplicate code", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.discounts.Create(f.ctx, f.coach, valid())
		require.NoError(t, err)

		other := access.NewActor(uuid.New(), user.RoleCoach)
		_, err = f.discounts.Create(f.ctx, other, valid())

		assert.ErrorIs(t, err, commands.ErrDuplicateDiscountCode)
	})

	testCases := []struct {
		name      string
		actor     func(f *fixture) access.Actor
		mutate    func(in *commands.CreateDiscountInput)
		expectErr error
	}{
		{name: "error: client cannot create", actor: func(f *fixture) access.Actor { return f.client }, expectErr: commands.ErrCoachOnly},
		{name: "error: admin cannot create", actor: func(f *fixture) access.Actor { return f.admin }, expectErr: commands.ErrCoachOnly},
		{
			name:      "error: malformed code",
			actor:     func(f *fixture) access.Actor { return f.coach },
			mutate:    func(in *commands.CreateDiscountInput) { in.Code = "no spaces" },
			expectErr: discount.ErrInvalidCode,
		},
		{
			name:      "error: negative amount",
			actor:     func(f *fixture) access.Actor { return f.coach },
			mutate:    func(in *commands.CreateDiscountInput) { in.Amount = decimal.RequireFromString("-1") },
			expectErr: discount.ErrInvalidAmount,
		},
		{
			name:      "error: zero max usage",
			actor:     func(f *fixture) access.Actor { return f.coach },
			mutate:    func(in *commands.CreateDiscountInput) { in.MaxUsage = 0 },
			expectErr: discount.ErrInvalidMaxUsage,
		},
		{
			name:      "error: expiry in the past",
			actor:     func(f *fixture) access.Actor { return f.coach },
			mutate:    func(in *commands.CreateDiscountInput) { in.Expiry = baseTime.Add(-time.Minute) },
			expectErr: discount.ErrExpiryInPast,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := valid()
			if tc.mutate != nil {
				tc.mutate(&in)
			}

			_, err := f.discounts.Create(f.ctx, tc.actor(f), in)

			assert.ErrorIs(t, err, tc.expectErr)
		})
	}
}

func TestDiscountCommands_Update(t *testing.T) {
	amount := decimal.RequireFromString("15")
	maxUsage := 3

	t.Run("success: owner changes amount and usage", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)

		d, err := f.discounts.Update(f.ctx, f.coach, "save10", commands.UpdateDiscountInput{Amount: &amount, MaxUsage: &maxUsage})

		require.NoError(t, err)
		assert.True(t, d.Amount().Equal(amount))
		assert.Equal(t, 3, d.MaxUsage())
		stored, _ := f.store.Discount("SAVE10")
		assert.True(t, stored.Amount().Equal(amount))
	})

	t.Run("success: admin edits any code", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)

		_, err := f.discounts.Update(f.ctx, f.admin, "SAVE10", commands.UpdateDiscountInput{Amount: &amount})

		assert.NoError(t, err)
	})

	t.Run("error: max usage below current use count", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)
		for range 2 {
			ok, err := f.discounts.Consume(f.ctx, "SAVE10")
			require.NoError(t, err)
			require.True(t, ok)
		}
		one := 1

		_, err := f.discounts.Update(f.ctx, f.coach, "SAVE10", commands.UpdateDiscountInput{MaxUsage: &one})

		assert.ErrorIs(t, err, discount.ErrMaxUsageBelowUsed)
	})

	testCases := []struct {
		name      string
		actor     func(f *fixture) access.Actor
		code      string
		in        commands.UpdateDiscountInput
		expectErr error
	}{
		{name: "error: no changes", actor: func(f *fixture) access.Actor { return f.coach }, code: "SAVE10", expectErr: commands.ErrNoChanges},
		{
			name:      "error: unknown code",
			actor:     func(f *fixture) access.Actor { return f.coach },
			code:      "MISSING",
			in:        commands.UpdateDiscountInput{Amount: &amount},
			expectErr: commands.ErrDiscountNotFound,
		},
		{
			name:      "error: another coach",
			actor:     func(*fixture) access.Actor { return access.NewActor(uuid.New(), user.RoleCoach) },
			code:      "SAVE10",
			in:        commands.UpdateDiscountInput{Amount: &amount},
			expectErr: commands.ErrNotDiscountOwner,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.discount("SAVE10", "10", 5)

			_, err := f.discounts.Update(f.ctx, tc.actor(f), tc.code, tc.in)

			assert.ErrorIs(t, err, tc.expectErr)
		})
	}
}

func TestDiscountCommands_Delete(t *testing.T) {
	t.Run("success: code is deactivated and hidden afterwards", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)

		require.NoError(t, f.discounts.Delete(f.ctx, f.coach, "SAVE10"))

		d, _ := f.store.Discount("SAVE10")
		assert.False(t, d.IsActive())
		assert.ErrorIs(t, f.discounts.Delete(f.ctx, f.coach, "SAVE10"), commands.ErrDiscountNotFound)
		_, err := f.discounts.Validate(f.ctx, "SAVE10", nil)
		assert.ErrorIs(t, err, discount.ErrInvalidOrExpiredCode)
	})

	t.Run("error: another coach", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)
		other := access.NewActor(uuid.New(), user.RoleCoach)

		assert.ErrorIs(t, f.discounts.Delete(f.ctx, other, "SAVE10"), commands.ErrNotDiscountOwner)
	})
}

func TestDiscountCommands_Validate(t *testing.T) {
	t.Run("success: usable code", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)

		d, err := f.discounts.Validate(f.ctx, " save10 ", &f.coach.UserID)

		require.NoError(t, err)
		assert.Equal(t, discount.Code("SAVE10"), d.Code())
	})

	t.Run("error: code of another coach", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)
		otherCoach := uuid.New()

		_, err := f.discounts.Validate(f.ctx, "SAVE10", &otherCoach)

		assert.ErrorIs(t, err, discount.ErrInvalidOrExpiredCode)
	})

	t.Run("error: expired code", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)
		f.clock.Add(31 * 24 * time.Hour)

		_, err := f.discounts.Validate(f.ctx, "SAVE10", nil)

		assert.ErrorIs(t, err, discount.ErrInvalidOrExpiredCode)
	})

	t.Run("error: usage limit reached", func(t *testing.T) {
		f := newFixture(t)
		f.discount("ONCE", "10", 1)
		ok, err := f.discounts.Consume(f.ctx, "ONCE")
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.discounts.Validate(f.ctx, "ONCE", nil)
		assert.ErrorIs(t, err, discount.ErrUsageLimitReached)

		ok, err = f.discounts.Consume(f.ctx, "ONCE")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success: FindUsable reports unusable codes without error", func(t *testing.T) {
		f := newFixture(t)
		f.discount("SAVE10", "10", 5)

		d, ok, err := f.discounts.FindUsable(f.ctx, "SAVE10")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotNil(t, d)

		_, ok, err = f.discounts.FindUsable(f.ctx, "NOPE")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDiscountCommands_ConcurrentBookings(t *testing.T) {
	t.Run("success: usage never exceeds the limit", func(t *testing.T) {
		f := newFixture(t)
		const (
			n        = 10
			maxUsage = 3
		)
		f.discount("RUSH", "15", maxUsage)
		bt := f.bookingType("100")
		slots := make([]uuid.UUID, n)
		for i := range slots {
			slots[i] = f.slot(24 + i).ID()
		}

		var wg sync.WaitGroup
		results := make(chan *commands.CreateSessionResult, n)
		errsCh := make(chan error, n)
		for _, slotID := range slots {
			wg.Add(1)
			go func() {
				defer wg.Done()
				actor := access.NewActor(uuid.New(), user.RoleUser)
				res, err := f.sessions.Create(f.ctx, actor, commands.CreateSessionInput{
					BookingTypeID: bt.ID(),
					TimeSlotID:    slotID,
					DiscountCode:  strPtr("rush"),
				}, uuid.Nil)
				if err != nil {
					errsCh <- err
					return
				}
				results <- res
			}()
		}
		wg.Wait()
		close(results)
		close(errsCh)

		for err := range errsCh {
			require.NoError(t, err)
		}
		discounted := 0
		for res := range results {
			if res.Session.DiscountCode != nil {
				discounted++
				assert.True(t, res.Session.Price.Equal(decimal.NewFromInt(85)))
			} else {
				assert.True(t, res.Session.Price.Equal(decimal.NewFromInt(100)))
			}
		}
		assert.Equal(t, maxUsage, discounted)
		assert.Equal(t, n, f.store.SessionCount())
		d, _ := f.store.Discount("RUSH")
		assert.Equal(t, maxUsage, d.UseCount())
	})
}
