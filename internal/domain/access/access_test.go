//go:build unit

package access_test

import (
	"testing"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type record struct {
	requester uuid.UUID
	provider  uuid.UUID
}

func (r record) ParticipantID(p access.Participant) uuid.UUID {
	if p == access.Provider {
		return r.provider
	}
	return r.requester
}

func TestCanAccess(t *testing.T) {
	requesterID, coachID, otherID := uuid.New(), uuid.New(), uuid.New()
	rec := record{requester: requesterID, provider: coachID}

	cases := []struct {
		name  string
		actor access.Actor
		want  bool
	}{
		{name: "requester with USER role", actor: access.NewActor(requesterID, user.RoleUser), want: true},
		{name: "requester with PREMIUM_USER role", actor: access.NewActor(requesterID, user.RolePremiumUser), want: true},
		{name: "other USER", actor: access.NewActor(otherID, user.RoleUser), want: false},
		{name: "owning coach", actor: access.NewActor(coachID, user.RoleCoach), want: true},
		{name: "other coach", actor: access.NewActor(otherID, user.RoleCoach), want: false},
		{name: "coach id presented with USER role", actor: access.NewActor(coachID, user.RoleUser), want: false},
		{name: "admin", actor: access.NewActor(otherID, user.RoleAdmin), want: true},
		{name: "unknown role", actor: access.NewActor(requesterID, user.Role("GUEST")), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.CanAccess(tc.actor, rec))
		})
	}
}

func TestIsRequesterOf(t *testing.T) {
	requesterID, coachID := uuid.New(), uuid.New()
	rec := record{requester: requesterID, provider: coachID}

	assert.True(t, access.IsRequesterOf(access.NewActor(requesterID, user.RoleUser), rec))
	assert.False(t, access.IsRequesterOf(access.NewActor(coachID, user.RoleCoach), rec))
	assert.False(t, access.IsRequesterOf(access.NewActor(uuid.New(), user.RoleAdmin), rec))
}
