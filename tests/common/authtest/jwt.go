//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"coach-booking/internal/domain/user"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, h.cfg.Duration).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	// past the validator's clock-skew leeway
	token, err := jwt.NewService(h.cfg.Secret, -time.Hour).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}
