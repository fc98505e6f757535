package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSetup indicates lattice dimensions or mass that cannot be built.
	ErrInvalidSetup = errors.New("sim: invalid lattice setup")

	// ErrInvalidConfig indicates run settings outside their valid range.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

// TickError wraps a failure with the tick it was detected on.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
