//go:build unit || e2e

package authtest

import (
	"testing"

	"coach-booking/internal/domain/user"
	"coach-booking/tests/common/dbtest"

	"github.com/google/uuid"
)

// CreateAndLogin inserts the user row the foreign keys need and returns a
// token for it. Identity lives outside this service, so there is no login call.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, h *JWTHelper, email string, role user.Role) (uuid.UUID, string) {
	t.Helper()
	id := dbtest.CreateTestUser(t, db, email, role.String())
	return id, h.GenerateToken(t, id, role)
}
