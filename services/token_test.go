package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func TestTokenService(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	now := issuedAt
	tokens := NewTokenService("secret", time.Hour, func() time.Time { return now })

	userID := uuid.New()
	token, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		token   string
		wantErr error
	}{
		{name: "fresh", at: issuedAt.Add(time.Minute), token: token},
		{name: "expired", at: issuedAt.Add(time.Hour + time.Second), token: token, wantErr: ErrExpiredToken},
		{name: "garbage", at: issuedAt, token: "not.a.token", wantErr: ErrInvalidToken},
		{name: "tampered", at: issuedAt, token: token + "x", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			got, err := tokens.Parse(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != userID {
				t.Errorf("Parse() = %s, want %s", got, userID)
			}
		})
	}
}

func TestTokenServiceRejectsForeignTokens(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	tokens := NewTokenService("secret", time.Hour, now)

	other, err := NewTokenService("another-secret", time.Hour, now).Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := tokens.Parse(other); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(other secret) error = %v, want ErrInvalidToken", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now().Add(time.Hour)),
	}
	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := tokens.Parse(hs256); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(HS256) error = %v, want ErrInvalidToken", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := tokens.Parse(noSubject); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(no subject) error = %v, want ErrInvalidToken", err)
	}
}
