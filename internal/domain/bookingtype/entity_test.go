//go:build unit

package bookingtype_test

import (
	"strings"
	"testing"
	"time"

	"coach-booking/internal/domain/bookingtype"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingType(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		title    string
		duration int
		price    decimal.Decimal
		errIs    error
	}{
		{name: "valid", title: "Intro call", duration: 30, price: decimal.NewFromInt(40)},
		{name: "free", title: "Intro call", duration: 30, price: decimal.Zero},
		{name: "blank name", title: "   ", duration: 30, price: decimal.Zero, errIs: bookingtype.ErrInvalidName},
		{name: "long name", title: strings.Repeat("a", 101), duration: 30, price: decimal.Zero, errIs: bookingtype.ErrInvalidName},
		{name: "zero duration", title: "Intro", duration: 0, price: decimal.Zero, errIs: bookingtype.ErrInvalidDuration},
		{name: "negative price", title: "Intro", duration: 30, price: decimal.NewFromInt(-1), errIs: bookingtype.ErrInvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bt, err := bookingtype.NewBookingType(uuid.New(), tc.title, tc.duration, tc.price, now)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.True(t, bt.IsActive())
			assert.Equal(t, strings.TrimSpace(tc.title), bt.Name())
		})
	}
}
