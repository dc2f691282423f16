package services

import (
	"time"

	"github.com/Dosada05/betting-pool/models"
)

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// IsLocked reports whether user may no longer mutate bets at now.
// The admin keeps entering reference results after the lock.
func IsLocked(user *models.User, now, lock time.Time) bool {
	if user.IsAdmin() {
		return false
	}
	return !now.Before(lock)
}
