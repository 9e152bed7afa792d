package usecase

import (
	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/user"
	"coach-booking/internal/pkg/jwt"
)

// TokenValidator turns a bearer token into the calling actor.
type TokenValidator interface {
	ValidateToken(tokenString string) (access.Actor, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (access.Actor, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return access.Actor{}, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return access.Actor{}, jwt.ErrInvalidToken
	}

	return access.NewActor(claims.UserID(), role), nil
}
