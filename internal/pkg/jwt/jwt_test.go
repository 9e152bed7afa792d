//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"coach-booking/internal/domain/user"
	"coach-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)
	userID := uuid.New()

	t.Run("round trip keeps user and role", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, user.RoleCoach)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID())
		assert.Equal(t, "COACH", claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewService("secret", -time.Hour)
		token, err := expired.GenerateToken(userID, user.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewService("other", time.Hour)
		token, err := other.GenerateToken(userID, user.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
