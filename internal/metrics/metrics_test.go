package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

// twoNodeFrame is a pinned anchor at the origin with one particle hanging
// below it at (x, y), connected by a single spring.
func twoNodeFrame(x, y float64) *sim.Frame {
	p := cloth.DefaultParams()
	return &sim.Frame{
		Positions: []cloth.Vec2{cloth.V(0, 0), cloth.V(x, y)},
		Prev:      []cloth.Vec2{cloth.V(0, 0), cloth.V(x, y)},
		Mass:      []float64{1, 2},
		Pinned:    []bool{true, false},
		Edges:     []cloth.Spring{{A: 0, B: 1}},
		Params:    p,
	}
}

func TestKineticEnergy(t *testing.T) {
	f := twoNodeFrame(0, -20)
	h := f.Params.SubstepDt()
	// moved 0.1 down in one substep
	f.Prev[1] = cloth.V(0, -20+0.1)

	m := NewKineticEnergy()
	m.Observe(f)

	v := 0.1 / h
	expected := 0.5 * 2 * v * v
	if math.Abs(m.Value()-expected) > 1e-6 {
		t.Errorf("expected kinetic energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyPeakKeepsMaximum(t *testing.T) {
	moving := twoNodeFrame(0, -20)
	moving.Prev[1] = cloth.V(0, -19)
	still := twoNodeFrame(0, -20)

	m := NewEnergyPeak()
	m.Observe(moving)
	peak := m.Value()
	m.Observe(still)

	if peak == 0 {
		t.Fatal("expected non-zero peak")
	}
	if m.Value() != peak {
		t.Errorf("peak dropped from %f to %f", peak, m.Value())
	}
}

func TestMaxStretch(t *testing.T) {
	m := NewMaxStretch()

	m.Observe(twoNodeFrame(0, -20))
	if m.Value() > 1e-12 {
		t.Errorf("expected no stretch at rest length, got %f", m.Value())
	}

	m.Observe(twoNodeFrame(0, -30))
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected stretch 0.5, got %f", m.Value())
	}

	m.Observe(twoNodeFrame(0, -10))
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected compression 0.5, got %f", m.Value())
	}
}

func TestSagAndCentroid(t *testing.T) {
	f := twoNodeFrame(6, -25)

	sag := NewSag()
	sag.Observe(f)
	if sag.Value() != 25 {
		t.Errorf("expected sag 25, got %f", sag.Value())
	}

	c := NewCentroidX()
	c.Observe(f)
	if c.Value() != 6 {
		t.Errorf("expected centroid 6 (anchors excluded), got %f", c.Value())
	}
}

func TestSpringsAndTears(t *testing.T) {
	full := twoNodeFrame(0, -20)
	torn := twoNodeFrame(0, -20)
	torn.Edges = nil

	springs := NewSprings()
	tears := NewTears()
	for _, f := range []*sim.Frame{full, full, torn} {
		springs.Observe(f)
		tears.Observe(f)
	}

	if springs.Value() != 0 {
		t.Errorf("expected 0 springs, got %f", springs.Value())
	}
	if tears.Value() != 1 {
		t.Errorf("expected 1 tear, got %f", tears.Value())
	}

	tears.Reset()
	tears.Observe(torn)
	if tears.Value() != 0 {
		t.Errorf("expected tears counted from first frame after reset, got %f", tears.Value())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(100)
	if s.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %f", s.Value())
	}

	s.Observe(twoNodeFrame(0, -20))
	s.Observe(twoNodeFrame(0, -500))
	s.Observe(twoNodeFrame(math.NaN(), -20))
	s.Observe(twoNodeFrame(50, -50))

	if s.Value() != 0.5 {
		t.Errorf("expected stability 0.5, got %f", s.Value())
	}
}

func TestDefaultsAreFresh(t *testing.T) {
	a := Defaults(1000)
	b := Defaults(1000)
	if len(a) != len(b) || len(a) == 0 {
		t.Fatalf("unexpected metric sets %d and %d", len(a), len(b))
	}

	names := make(map[string]bool)
	for i := range a {
		if a[i] == b[i] {
			t.Errorf("metric %s shared between calls", a[i].Name())
		}
		if names[a[i].Name()] {
			t.Errorf("duplicate metric name %s", a[i].Name())
		}
		names[a[i].Name()] = true
	}
}

func TestMetricsOverSimulation(t *testing.T) {
	s, err := sim.New(sim.Setup{NodesX: 4, NodesY: 4, Mass: 1, Params: cloth.DefaultParams()})
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range Defaults(10_000) {
		s.AddMetric(m)
	}

	res, err := s.Run(t.Context(), sim.Config{Ticks: 60, SampleEvery: 10, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}

	if res.Metrics["sag"] <= 60 {
		t.Errorf("expected cloth to hang below its rest extent, sag=%f", res.Metrics["sag"])
	}
	if res.Metrics["springs"] != 24 {
		t.Errorf("expected 24 springs, got %f", res.Metrics["springs"])
	}
	if res.Metrics["stability"] != 1 {
		t.Errorf("expected stable run, got %f", res.Metrics["stability"])
	}
	if res.Metrics["energy_peak"] <= 0 {
		t.Error("expected the falling cloth to gain kinetic energy")
	}
}
