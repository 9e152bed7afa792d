//go:build unit

package pgconv_test

import (
	"testing"

	"coach-booking/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalRoundTrip(t *testing.T) {
	for _, in := range []string{"0", "80", "99.99", "100.50", "0.01"} {
		t.Run(in, func(t *testing.T) {
			d := decimal.RequireFromString(in)
			n := pgconv.DecimalToPgtype(d)
			require.True(t, n.Valid)

			out, err := pgconv.DecimalFromPgtype(n)
			require.NoError(t, err)
			assert.True(t, d.Equal(out), "want %s got %s", d, out)
		})
	}
}

func TestDecimalFromPgtype_Invalid(t *testing.T) {
	out, err := pgconv.DecimalFromPgtype(pgtype.Numeric{})
	require.NoError(t, err)
	assert.True(t, out.IsZero())

	_, err = pgconv.DecimalFromPgtype(pgtype.Numeric{NaN: true, Valid: true})
	assert.ErrorIs(t, err, pgconv.ErrInvalidNumericValue)
}
