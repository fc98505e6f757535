package metrics

import (
	"github.com/san-kum/clothsim/internal/sim"
)

// KineticEnergy reports the total kinetic energy of the lattice at the last
// observed frame. Velocity is recovered from the Verlet pair as
// (pos-prev)/h where h is the substep duration.
type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f *sim.Frame) {
	h := f.Params.SubstepDt()
	if h <= 0 {
		return
	}
	total := 0.0
	for i, pos := range f.Positions {
		v := pos.Sub(f.Prev[i]).Scale(1 / h)
		total += 0.5 * f.Mass[i] * (v.X*v.X + v.Y*v.Y)
	}
	e.value = total
}

func (e *KineticEnergy) Value() float64 { return e.value }

func (e *KineticEnergy) Reset() { e.value = 0 }

// EnergyPeak tracks the largest kinetic energy seen since the last reset.
type EnergyPeak struct {
	name string
	ke   KineticEnergy
	peak float64
}

func NewEnergyPeak() *EnergyPeak {
	return &EnergyPeak{name: "energy_peak"}
}

func (e *EnergyPeak) Name() string { return e.name }

func (e *EnergyPeak) Observe(f *sim.Frame) {
	e.ke.Observe(f)
	e.peak = max(e.peak, e.ke.Value())
}

func (e *EnergyPeak) Value() float64 { return e.peak }

func (e *EnergyPeak) Reset() {
	e.ke.Reset()
	e.peak = 0
}
