package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestSameUUID(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	aCopy := a

	tests := []struct {
		name string
		x, y *uuid.UUID
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", &a, nil, false},
		{"other nil", nil, &a, false},
		{"equal values", &a, &aCopy, true},
		{"different values", &a, &b, false},
	}
	for _, tt := range tests {
		if got := SameUUID(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: SameUUID() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("BETTING_POOL_TEST_VAR", "set")
	if got := GetEnvOrDefault("BETTING_POOL_TEST_VAR", "fallback"); got != "set" {
		t.Errorf("GetEnvOrDefault() = %q, want set", got)
	}
	if got := GetEnvOrDefault("BETTING_POOL_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault() = %q, want fallback", got)
	}
}
