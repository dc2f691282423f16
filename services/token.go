package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenService issues and parses the bearer tokens {sub, iat, exp}.
type TokenService interface {
	Issue(userID uuid.UUID) (string, error)
	Parse(token string) (uuid.UUID, error)
}

type jwtTokenService struct {
	secret     []byte
	expiration time.Duration
	now        Clock
}

func NewTokenService(secret string, expiration time.Duration, now Clock) TokenService {
	if now == nil {
		now = SystemClock
	}
	return &jwtTokenService{secret: []byte(secret), expiration: expiration, now: now}
}

func (s *jwtTokenService) Issue(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtTokenService) Parse(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	// Срок действия проверяем сами, по часам сервиса.
	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS512.Alg()},
		SkipClaimsValidation: true,
	}

	_, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return uuid.Nil, ErrExpiredToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
