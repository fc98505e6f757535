package sim

import (
	"context"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickCounter struct{ n int }

func (c *tickCounter) Name() string    { return "ticks_seen" }
func (c *tickCounter) Observe(*Frame)  { c.n++ }
func (c *tickCounter) Value() float64  { return float64(c.n) }
func (c *tickCounter) Reset()          { c.n = 0 }
func (c *tickCounter) OnTick(f *Frame) { c.n++ }

func newTestSim(t *testing.T, nx, ny int) *Simulator {
	t.Helper()
	s, err := New(Setup{NodesX: nx, NodesY: ny, Mass: 1, Params: cloth.DefaultParams()})
	require.NoError(t, err)
	return s
}

func testWind() *cloth.WindField {
	return cloth.NewWindField(
		cloth.Rect{Min: cloth.V(0, -1000), Max: cloth.V(300, 0)},
		cloth.V(1000, 300),
		1200,
	)
}

func TestNewRejectsInvalidSetup(t *testing.T) {
	tests := []struct {
		name  string
		setup Setup
		want  error
	}{
		{"zero width", Setup{NodesX: 0, NodesY: 3, Mass: 1, Params: cloth.DefaultParams()}, ErrInvalidSetup},
		{"negative height", Setup{NodesX: 3, NodesY: -1, Mass: 1, Params: cloth.DefaultParams()}, ErrInvalidSetup},
		{"zero mass", Setup{NodesX: 3, NodesY: 3, Mass: 0, Params: cloth.DefaultParams()}, ErrInvalidSetup},
		{"bad params", Setup{NodesX: 3, NodesY: 3, Mass: 1, Params: cloth.Params{}}, cloth.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.setup)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSnapshotMatchesLattice(t *testing.T) {
	s := newTestSim(t, 4, 3)

	f := s.Snapshot()
	defer s.Release(f)

	require.Len(t, f.Positions, 12)
	require.Len(t, f.Pinned, 12)
	// (nx-1)*ny horizontal + nx*(ny-1) vertical
	assert.Len(t, f.Edges, 3*3+4*2)
	assert.Equal(t, 0, f.Tick)
	for x := range 4 {
		assert.True(t, f.Pinned[s.Lattice().ID(x, 0)])
	}
	assert.Equal(t, cloth.V(20, -40), f.Positions[s.Lattice().ID(1, 2)])
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSim(t, 3, 3)

	f := s.Snapshot()
	before := append([]cloth.Vec2(nil), f.Positions...)
	for range 10 {
		s.Step()
	}
	assert.Equal(t, before, f.Positions)
}

func TestStepKeepsAnchorsFixed(t *testing.T) {
	s := newTestSim(t, 5, 4)
	start := s.Snapshot()

	for range 30 {
		s.Step()
	}

	end := s.Snapshot()
	assert.Equal(t, 30, s.Tick())
	assert.InDelta(t, 0.5, s.Time(), 1e-12)
	for i, pinned := range start.Pinned {
		if pinned {
			assert.Equal(t, start.Positions[i], end.Positions[i])
		}
	}
	bottom := s.Lattice().ID(2, 3)
	assert.Less(t, end.Positions[bottom].Y, start.Positions[bottom].Y)
}

func TestEnqueuedCutAppliesOnNextStep(t *testing.T) {
	s := newTestSim(t, 3, 3)
	edges := len(s.Snapshot().Edges)

	s.Enqueue(Cut(cloth.V(0, -40)))
	assert.Len(t, s.Snapshot().Edges, edges, "queued event must wait for the tick")

	s.Step()
	assert.Len(t, s.Snapshot().Edges, edges-1)

	s.Step()
	assert.Len(t, s.Snapshot().Edges, edges-1, "queue is drained once")
}

func TestApplyEvents(t *testing.T) {
	s, err := New(Setup{NodesX: 3, NodesY: 3, Mass: 1, Params: cloth.DefaultParams(), Wind: testWind()})
	require.NoError(t, err)

	require.False(t, s.WindEnabled())
	require.True(t, s.Apply(ToggleWind()))
	assert.True(t, s.WindEnabled())
	assert.True(t, s.Params().EnableWind)

	assert.False(t, s.Apply(Cut(cloth.V(5000, 5000))))
	assert.False(t, s.Apply(Impulse(cloth.V(5000, 5000))))
	assert.True(t, s.Apply(Impulse(cloth.V(20, -20))))
	assert.False(t, s.Apply(Event{Kind: EventKind(42)}))
}

func TestResetRestoresRestPose(t *testing.T) {
	s := newTestSim(t, 3, 3)
	rest := s.Snapshot()

	s.Apply(Cut(cloth.V(0, -40)))
	for range 20 {
		s.Step()
	}
	require.True(t, s.Apply(Reset()))

	f := s.Snapshot()
	assert.Equal(t, rest.Positions, f.Positions)
	assert.Equal(t, f.Positions, f.Prev)
	assert.Len(t, f.Edges, len(rest.Edges)-1, "cut springs stay cut")
}

func TestSetParamsValidates(t *testing.T) {
	s := newTestSim(t, 2, 2)

	bad := cloth.DefaultParams()
	bad.Substeps = 0
	require.ErrorIs(t, s.SetParams(bad), cloth.ErrInvalidParams)

	good := cloth.DefaultParams()
	good.Gravity = 10
	require.NoError(t, s.SetParams(good))
	assert.Equal(t, 10.0, s.Params().Gravity)
}

func TestRunSamplesMetrics(t *testing.T) {
	s := newTestSim(t, 3, 3)
	m := &tickCounter{}
	obs := &tickCounter{}
	s.AddMetric(m)
	s.AddObserver(obs)

	res, err := s.Run(context.Background(), Config{Ticks: 10, SampleEvery: 3, ValidateState: true})
	require.NoError(t, err)

	assert.Equal(t, 10, res.TicksTaken)
	assert.Empty(t, res.Errors)
	// initial sample, ticks 3, 6, 9 and the final tick
	assert.Len(t, res.Times, 5)
	assert.Len(t, res.Series["ticks_seen"], 5)
	assert.Equal(t, 5.0, res.Metrics["ticks_seen"])
	assert.Equal(t, 5, obs.n)
	assert.Equal(t, []string{"ticks_seen"}, res.MetricNames)
	require.NotNil(t, res.Final)
	assert.Equal(t, 10, res.Final.Tick)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	s := newTestSim(t, 2, 2)

	_, err := s.Run(context.Background(), Config{Ticks: -1, SampleEvery: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = s.Run(context.Background(), Config{Ticks: 5, SampleEvery: 0})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	s := newTestSim(t, 3, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx, DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.TicksTaken)
	assert.Equal(t, 0, s.Tick())
}

func TestRunReportsDivergence(t *testing.T) {
	p := cloth.DefaultParams()
	p.Stiffness = 1e12
	s, err := New(Setup{NodesX: 1, NodesY: 2, Mass: 1, Params: p})
	require.NoError(t, err)

	res, err := s.Run(context.Background(), Config{Ticks: 200, SampleEvery: 1, ValidateState: true})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], cloth.ErrNonFinite)

	var tickErr *TickError
	require.ErrorAs(t, res.Errors[0], &tickErr)
	assert.Equal(t, res.TicksTaken, tickErr.Tick)
	assert.Less(t, res.TicksTaken, 200)
}

func TestEnsembleRunsIndependently(t *testing.T) {
	setup := func(run int) Setup {
		p := cloth.DefaultParams()
		p.EnableWind = true
		return Setup{
			NodesX: 4, NodesY: 4, Mass: 1, Params: p,
			Wind: testWind().WithGust(0.5, int64(run)),
		}
	}
	metrics := func() []Metric { return []Metric{&tickCounter{}} }

	results, err := NewEnsemble(3, setup, metrics).Run(context.Background(), Config{Ticks: 20, SampleEvery: 5})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 20, r.TicksTaken)
		assert.Equal(t, 5.0, r.Metrics["ticks_seen"])
	}
}

func TestEnsemblePropagatesSetupErrors(t *testing.T) {
	setup := func(run int) Setup {
		return Setup{NodesX: run, NodesY: 2, Mass: 1, Params: cloth.DefaultParams()}
	}
	_, err := NewEnsemble(2, setup, nil).Run(context.Background(), DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidSetup)
}

type cutAt map[int]cloth.Vec2

func (c cutAt) EventsAt(tick int) []Event {
	if p, ok := c[tick]; ok {
		return []Event{Cut(p)}
	}
	return nil
}

func TestRunAppliesScript(t *testing.T) {
	s := newTestSim(t, 3, 3)
	edges := len(s.Snapshot().Edges)

	script := cutAt{0: cloth.V(0, -40), 5: cloth.V(40, -40)}
	res, err := s.Run(context.Background(), Config{Ticks: 10, SampleEvery: 10, Script: script})
	require.NoError(t, err)
	assert.Len(t, res.Final.Edges, edges-2)
}
