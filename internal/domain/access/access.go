// Package access resolves who may act on a booking record.
//
// Every record in the booking workflow has two participants: the requester
// who booked and pays, and the provider (coach) who delivers. A role maps to
// exactly one participant, and admins bypass the check.
package access

import (
	"coach-booking/internal/domain/user"

	"github.com/google/uuid"
)

type Participant int

const (
	Requester Participant = iota + 1
	Provider
)

func (p Participant) String() string {
	switch p {
	case Requester:
		return "requester"
	case Provider:
		return "provider"
	default:
		return "unknown"
	}
}

type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

func NewActor(userID uuid.UUID, role user.Role) Actor {
	return Actor{UserID: userID, Role: role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

func (a Actor) IsCoach() bool {
	return a.Role == user.RoleCoach
}

// Participant reports which side of a booking the actor's role stands on.
func (a Actor) Participant() (Participant, bool) {
	switch a.Role {
	case user.RoleUser, user.RolePremiumUser:
		return Requester, true
	case user.RoleCoach:
		return Provider, true
	default:
		return 0, false
	}
}

// Owned is implemented by records that reference both participants.
type Owned interface {
	ParticipantID(p Participant) uuid.UUID
}

func CanAccess(a Actor, o Owned) bool {
	if a.IsAdmin() {
		return true
	}
	p, ok := a.Participant()
	if !ok {
		return false
	}
	return o.ParticipantID(p) == a.UserID
}

// IsRequesterOf is stricter than CanAccess: only the booking's requester passes.
func IsRequesterOf(a Actor, o Owned) bool {
	return o.ParticipantID(Requester) == a.UserID
}
