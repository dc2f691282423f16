package services

import (
	"fmt"
	"unicode"
)

const minPasswordLength = 8

// ValidatePassword enforces the password policy used at signup and password change.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("%w: must contain at least %d characters", ErrUnsatisfiedPasswordRequirements, minPasswordLength)
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return fmt.Errorf("%w: must not contain spaces", ErrUnsatisfiedPasswordRequirements)
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrUnsatisfiedPasswordRequirements)
	case !lower:
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrUnsatisfiedPasswordRequirements)
	case !digit:
		return fmt.Errorf("%w: must contain at least one digit", ErrUnsatisfiedPasswordRequirements)
	}
	return nil
}
