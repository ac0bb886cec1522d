package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("member is not authenticated")
	ErrNotVerified     = errors.New("member has no verified instagram handle")
	ErrNotFound        = errors.New("likeable person not found")
	ErrForbidden       = errors.New("member is not the owner of this likeable person")
	ErrDuplicateEdge   = errors.New("likeable person already registered for this username")
	ErrLocked          = errors.New("likeable person cannot be modified yet")
	ErrNoChange        = errors.New("attractive type is already set")
	ErrStorage         = errors.New("storage failure")

	ErrInstaMemberNotFound = errors.New("insta member not found")

	// ErrConflict é retornado pelo store quando um update otimista perde a corrida.
	ErrConflict = errors.New("concurrent modification")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// LockedError carries the unlock date so the boundary can show a countdown.
type LockedError struct {
	ModifyUnlockDate time.Time
	Remaining        string
}

func NewLockedError(now time.Time, modifyUnlockDate time.Time) *LockedError {
	return &LockedError{
		ModifyUnlockDate: modifyUnlockDate,
		Remaining:        HumanizeRemaining(now, modifyUnlockDate),
	}
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s: %s remaining", ErrLocked.Error(), e.Remaining)
}

func (e *LockedError) Unwrap() error {
	return ErrLocked
}

// Validation builds an ErrValidation with a field specific reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
