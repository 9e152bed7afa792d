package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleUser        Role = "USER"
	RolePremiumUser Role = "PREMIUM_USER"
	RoleCoach       Role = "COACH"
	RoleAdmin       Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePremiumUser, RoleCoach, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
