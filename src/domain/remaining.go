package domain

import (
	"fmt"
	"time"
)

// HumanizeRemaining renders the whole minutes left until unlockAt.
// Exactly 60 minutes renders as "1 hours 0 minutes".
func HumanizeRemaining(now time.Time, unlockAt time.Time) string {
	minutes := int64(unlockAt.Sub(now) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}

	return fmt.Sprintf("%d hours %d minutes", minutes/60, minutes%60)
}
