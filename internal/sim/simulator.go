package sim

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/clothsim/internal/cloth"
)

// Simulator drives a cloth lattice tick by tick. Ticks, input events and
// snapshots are serialised by a mutex so readers never observe a partially
// integrated tick.
type Simulator struct {
	mu        sync.Mutex
	setup     Setup
	params    cloth.Params
	particles *cloth.ParticleStore
	springs   *cloth.SpringStore
	lattice   *cloth.Lattice
	wind      *cloth.WindField
	pending   []Event
	tick      int
	frames    *FramePool
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

// New builds the lattice described by s. Parameters are validated here so
// that Step never sees values that would produce NaN.
func New(s Setup) (*Simulator, error) {
	if s.NodesX <= 0 || s.NodesY <= 0 {
		return nil, fmt.Errorf("%w: lattice must be at least 1x1, got %dx%d", ErrInvalidSetup, s.NodesX, s.NodesY)
	}
	if !(s.Mass > 0) {
		return nil, fmt.Errorf("%w: particle mass must be positive, got %v", ErrInvalidSetup, s.Mass)
	}
	if err := s.Params.Validate(); err != nil {
		return nil, err
	}

	ps, ss, lat := cloth.CreateLattice(s.NodesX, s.NodesY, s.Params.RestLength, s.Mass)
	return &Simulator{
		setup:     s,
		params:    s.Params,
		particles: ps,
		springs:   ss,
		lattice:   lat,
		wind:      s.Wind,
		frames:    NewFramePool(ps.Len()),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Params returns a copy of the current parameters.
func (s *Simulator) Params() cloth.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the parameters used from the next tick on.
func (s *Simulator) SetParams(p cloth.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

func (s *Simulator) Lattice() *cloth.Lattice { return s.lattice }

func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *Simulator) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.tick) * s.params.Dt
}

func (s *Simulator) WindEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.EnableWind && s.wind != nil
}

// Enqueue records ev to be applied before the next tick.
func (s *Simulator) Enqueue(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
}

// Apply applies ev immediately and reports whether it changed anything.
func (s *Simulator) Apply(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ev)
}

func (s *Simulator) apply(ev Event) bool {
	switch ev.Kind {
	case EventImpulse:
		n := cloth.ApplyImpulse(s.particles, ev.Point, s.params.MouseRadius, s.params.MouseForce)
		s.logger.Debug("impulse", "point", ev.Point, "particles", n)
		return n > 0
	case EventCut:
		cut := cloth.CutNearest(s.particles, s.springs, ev.Point, s.params.RestLength)
		s.logger.Debug("cut", "point", ev.Point, "removed", cut, "springs", s.springs.Len())
		return cut
	case EventReset:
		cloth.Reset(s.particles, s.params)
		s.logger.Debug("reset", "tick", s.tick)
		return true
	case EventToggleWind:
		s.params.EnableWind = !s.params.EnableWind
		s.logger.Debug("wind", "enabled", s.params.EnableWind)
		return true
	default:
		s.logger.Warn("unknown event", "kind", ev.Kind)
		return false
	}
}

// Step drains pending events and advances one tick.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
}

func (s *Simulator) step() {
	for _, ev := range s.pending {
		s.apply(ev)
	}
	s.pending = s.pending[:0]

	cloth.Step(s.particles, s.springs, s.wind, s.params)
	s.tick++
}

// Snapshot copies the current lattice state. Release it with Release when
// done to recycle its buffers.
func (s *Simulator) Snapshot() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Simulator) snapshot() *Frame {
	f := s.frames.Get()
	f.Tick = s.tick
	f.Time = float64(s.tick) * s.params.Dt
	f.Params = s.params
	f.WindOn = s.params.EnableWind && s.wind != nil
	if s.wind != nil {
		f.Wind = s.wind.Rect
	}
	f.Positions = s.particles.Snapshot(f.Positions)
	for i := range s.particles.Len() {
		p := s.particles.At(i)
		f.Prev = append(f.Prev, p.Prev)
		f.Mass = append(f.Mass, p.Mass)
		f.Pinned = append(f.Pinned, p.Pinned)
	}
	for a, b := range s.springs.Edges() {
		f.Edges = append(f.Edges, cloth.Spring{A: a, B: b})
	}
	return f
}

// Release returns a frame obtained from Snapshot to the pool.
func (s *Simulator) Release(f *Frame) { s.frames.Put(f) }

// Run advances cfg.Ticks ticks, sampling metrics every cfg.SampleEvery ticks.
// ctx is checked between ticks only; a tick in progress always completes.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:       make([]float64, 0, cfg.Ticks/cfg.SampleEvery+1),
		MetricNames: make([]string, 0, len(s.metrics)),
		Series:      make(map[string][]float64),
		Metrics:     make(map[string]float64),
		Errors:      make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.MetricNames = append(result.MetricNames, m.Name())
	}

	s.logger.Info("run started", "ticks", cfg.Ticks, "particles", s.particles.Len(), "springs", s.springs.Len())
	s.sample(result)

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			result.Final = s.Snapshot()
			return result, ctx.Err()
		default:
		}

		s.mu.Lock()
		if cfg.Script != nil {
			s.pending = append(s.pending, cfg.Script.EventsAt(s.tick)...)
		}
		s.step()
		var err error
		if cfg.ValidateState {
			err = s.particles.CheckFinite()
		}
		t := s.tick
		s.mu.Unlock()

		result.TicksTaken++

		if err != nil {
			tickErr := &TickError{Tick: t, Time: float64(t) * s.Params().Dt, Wrapped: err}
			result.Errors = append(result.Errors, tickErr)
			s.logger.Error("simulation diverged", "err", tickErr)
			break
		}

		if t%cfg.SampleEvery == 0 || i == cfg.Ticks-1 {
			s.sample(result)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.Snapshot()

	s.logger.Info("run finished", "ticks", result.TicksTaken, "springs", len(result.Final.Edges))
	return result, nil
}

func (s *Simulator) sample(result *Result) {
	if len(s.metrics) == 0 && len(s.observers) == 0 {
		result.Times = append(result.Times, s.Time())
		return
	}

	f := s.Snapshot()
	defer s.Release(f)

	result.Times = append(result.Times, f.Time)
	for _, m := range s.metrics {
		m.Observe(f)
		result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
	}
	for _, o := range s.observers {
		o.OnTick(f)
	}
}

func validateConfig(cfg Config) error {
	if cfg.Ticks < 0 {
		return fmt.Errorf("%w: ticks must be non-negative, got %d", ErrInvalidConfig, cfg.Ticks)
	}
	if cfg.SampleEvery < 1 {
		return fmt.Errorf("%w: sample interval must be at least 1, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}
