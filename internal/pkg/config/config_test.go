//go:build unit

package config_test

import (
	"testing"

	"coach-booking/internal/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "test config is valid", mutate: func(*config.Config) {}},
		{
			name: "paypal gateway needs credentials",
			mutate: func(c *config.Config) {
				c.PayPal.Gateway = "paypal"
			},
			wantErr: "PAYPAL_CLIENT_ID",
		},
		{
			name: "paypal gateway with credentials",
			mutate: func(c *config.Config) {
				c.PayPal.Gateway = "paypal"
				c.PayPal.ClientID = "id"
				c.PayPal.ClientSecret = "secret"
			},
		},
		{
			name:    "unknown gateway",
			mutate:  func(c *config.Config) { c.PayPal.Gateway = "stripe" },
			wantErr: "PAYMENT_GATEWAY",
		},
		{
			name:    "bad currency",
			mutate:  func(c *config.Config) { c.PayPal.Currency = "DOLLARS" },
			wantErr: "PAYPAL_CURRENCY",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *config.Config) { c.JWT.Secret = "abc" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "zero capture lock ttl",
			mutate:  func(c *config.Config) { c.Booking.CaptureLockTTL = 0 },
			wantErr: "TTLs",
		},
		{
			name:    "idempotency lease longer than the key ttl",
			mutate:  func(c *config.Config) { c.Booking.IdempotencyLeaseTTL = c.Booking.IdempotencyTTL + 1 },
			wantErr: "IDEMPOTENCY_LEASE_TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
