package metrics

import "github.com/san-kum/clothsim/internal/sim"

// Springs counts intact springs.
type Springs struct {
	name  string
	count int
}

func NewSprings() *Springs {
	return &Springs{name: "springs"}
}

func (s *Springs) Name() string         { return s.name }
func (s *Springs) Observe(f *sim.Frame) { s.count = len(f.Edges) }
func (s *Springs) Value() float64       { return float64(s.count) }
func (s *Springs) Reset()               { s.count = 0 }

// Tears counts springs lost since the first observed frame.
type Tears struct {
	name    string
	initial int
	current int
	seen    bool
}

func NewTears() *Tears {
	return &Tears{name: "tears"}
}

func (t *Tears) Name() string { return t.name }

func (t *Tears) Observe(f *sim.Frame) {
	if !t.seen {
		t.initial = len(f.Edges)
		t.seen = true
	}
	t.current = len(f.Edges)
}

func (t *Tears) Value() float64 {
	return float64(t.initial - t.current)
}

func (t *Tears) Reset() {
	t.initial, t.current, t.seen = 0, 0, false
}

// Defaults returns a fresh instance of every per-frame metric. The stability
// box is sized from the lattice extent so a hanging cloth stays inside it.
func Defaults(extent float64) []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyPeak(),
		NewMaxStretch(),
		NewSag(),
		NewCentroidX(),
		NewSprings(),
		NewTears(),
		NewStability(extent),
	}
}
