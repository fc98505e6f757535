package cloth

import (
	"fmt"
	"math"
)

const (
	DefaultSubsteps     = 5
	DefaultRelaxIters   = 3
	DefaultDampen       = 0.99
	DefaultDt           = 1.0 / 60.0
	DefaultMouseRadius  = 150.0
	DefaultMouseForceX  = 8000.0
	DefaultRestLength   = 20.0
	DefaultStiffness    = 20000.0
	DefaultGravity      = 1000.0
	DefaultParticleMass = 1.0
)

// Params are read-only to Step and Reset. Callers pass a fresh copy per call.
type Params struct {
	RestLength   float64 // structural rest length r0
	Stiffness    float64 // structural stiffness k0
	Gravity      float64
	Dt           float64 // duration of one tick
	DampenFactor float64 // velocity retained per substep, in (0, 1]
	EnableWind   bool
	MouseForce   Vec2
	MouseRadius  float64
	Substeps     int
	RelaxIters   int
}

func DefaultParams() Params {
	return Params{
		RestLength:   DefaultRestLength,
		Stiffness:    DefaultStiffness,
		Gravity:      DefaultGravity,
		Dt:           DefaultDt,
		DampenFactor: DefaultDampen,
		MouseForce:   Vec2{X: DefaultMouseForceX},
		MouseRadius:  DefaultMouseRadius,
		Substeps:     DefaultSubsteps,
		RelaxIters:   DefaultRelaxIters,
	}
}

// RestLengths returns the structural, shear and flexion rest lengths.
// Only the structural tier is evaluated by the integrator.
func (p Params) RestLengths() (structural, shear, flexion float64) {
	return p.RestLength, p.RestLength * math.Sqrt2, p.RestLength * 2
}

// SubstepDt is the duration of one substep.
func (p Params) SubstepDt() float64 {
	return p.Dt / float64(p.Substeps)
}

// Validate reports the first parameter outside its valid range.
func (p Params) Validate() error {
	switch {
	case !(p.RestLength > 0):
		return fmt.Errorf("%w: rest length must be positive, got %v", ErrInvalidParams, p.RestLength)
	case !(p.Stiffness >= 0):
		return fmt.Errorf("%w: stiffness must be non-negative, got %v", ErrInvalidParams, p.Stiffness)
	case math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0):
		return fmt.Errorf("%w: gravity must be finite, got %v", ErrInvalidParams, p.Gravity)
	case !(p.Dt > 0):
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidParams, p.Dt)
	case !(p.DampenFactor > 0 && p.DampenFactor <= 1):
		return fmt.Errorf("%w: dampen factor must be in (0, 1], got %v", ErrInvalidParams, p.DampenFactor)
	case p.Substeps < 1:
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidParams, p.Substeps)
	case p.RelaxIters < 0:
		return fmt.Errorf("%w: relaxation iterations must be non-negative, got %d", ErrInvalidParams, p.RelaxIters)
	case !(p.MouseRadius >= 0):
		return fmt.Errorf("%w: mouse radius must be non-negative, got %v", ErrInvalidParams, p.MouseRadius)
	}
	return nil
}
