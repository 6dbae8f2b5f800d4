package slot

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotNotFound indicates the slot doesn't exist.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrInvalidCount indicates a non-positive required count.
	ErrInvalidCount = errors.New("required count must be positive")
	// ErrInvalidFreshness indicates an unrecognized freshness class.
	ErrInvalidFreshness = errors.New("invalid freshness class")
	// ErrConflict indicates the operation raced a concurrent writer
	// and is safe to retry in full.
	ErrConflict = errors.New("allocation conflict, retry")
)

// InsufficientPoolError reports an allocation shortfall. No state is
// mutated when it is returned.
type InsufficientPoolError struct {
	Required  int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("insufficient pool: required %d, available %d", e.Required, e.Available)
}
