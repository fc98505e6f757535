package cloth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates simulation parameters outside their valid range.
	ErrInvalidParams = errors.New("cloth: invalid simulation parameters")

	// ErrNonFinite indicates a particle position became NaN or Inf.
	ErrNonFinite = errors.New("cloth: non-finite particle position")
)

// ParticleError reports which particle failed a check.
type ParticleError struct {
	ID      int
	Pos     Vec2
	Wrapped error
}

func (e *ParticleError) Error() string {
	return fmt.Sprintf("particle %d at %v: %v", e.ID, e.Pos, e.Wrapped)
}

func (e *ParticleError) Unwrap() error {
	return e.Wrapped
}

// precondition panics with a package-prefixed message. Used only for
// programming errors that would otherwise poison the integrator with NaN.
func precondition(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("cloth: "+format, args...))
	}
}
