package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/sim"
)

// MaxStretch is the largest relative deviation |len-r0|/r0 over all springs
// in the last observed frame.
type MaxStretch struct {
	name  string
	value float64
}

func NewMaxStretch() *MaxStretch {
	return &MaxStretch{name: "max_stretch"}
}

func (m *MaxStretch) Name() string { return m.name }

func (m *MaxStretch) Observe(f *sim.Frame) {
	r0 := f.Params.RestLength
	worst := 0.0
	for _, sp := range f.Edges {
		l := f.Positions[sp.A].Dist(f.Positions[sp.B])
		worst = math.Max(worst, math.Abs(l-r0)/r0)
	}
	m.value = worst
}

func (m *MaxStretch) Value() float64 { return m.value }
func (m *MaxStretch) Reset()         { m.value = 0 }

// Sag is how far the lowest particle hangs below the anchor row.
type Sag struct {
	name  string
	value float64
}

func NewSag() *Sag {
	return &Sag{name: "sag"}
}

func (s *Sag) Name() string { return s.name }

func (s *Sag) Observe(f *sim.Frame) {
	lowest := 0.0
	for _, p := range f.Positions {
		lowest = math.Min(lowest, p.Y)
	}
	s.value = -lowest
}

func (s *Sag) Value() float64 { return s.value }
func (s *Sag) Reset()         { s.value = 0 }

// CentroidX is the mean horizontal position of the unpinned particles. Its
// time series is the sway signal fed to spectral analysis.
type CentroidX struct {
	name  string
	value float64
}

func NewCentroidX() *CentroidX {
	return &CentroidX{name: "centroid_x"}
}

func (c *CentroidX) Name() string { return c.name }

func (c *CentroidX) Observe(f *sim.Frame) {
	sum, n := 0.0, 0
	for i, p := range f.Positions {
		if f.Pinned[i] {
			continue
		}
		sum += p.X
		n++
	}
	if n == 0 {
		c.value = 0
		return
	}
	c.value = sum / float64(n)
}

func (c *CentroidX) Value() float64 { return c.value }
func (c *CentroidX) Reset()         { c.value = 0 }
