package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNodesX      = 30
	DefaultNodesY      = 20
	DefaultTicks       = 600
	DefaultSampleEvery = 1
	DefaultWindWidth   = 1200.0
	DefaultWindForceX  = 1000.0
	DefaultWindForceY  = 300.0
	DefaultWindDepth   = 1000.0
	DefaultWindSpan    = 300.0
)

// ErrInvalidConfig is returned by Validate for values no simulation can use.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Lattice LatticeConfig `yaml:"lattice"`
	Physics PhysicsConfig `yaml:"physics"`
	Wind    WindConfig    `yaml:"wind"`
	Mouse   MouseConfig   `yaml:"mouse"`
	Run     RunConfig     `yaml:"run"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vec() cloth.Vec2 { return cloth.V(p.X, p.Y) }

type LatticeConfig struct {
	NodesX int     `yaml:"nodes_x"`
	NodesY int     `yaml:"nodes_y"`
	Mass   float64 `yaml:"mass"`
}

type PhysicsConfig struct {
	RestLength   float64 `yaml:"rest_length"`
	Stiffness    float64 `yaml:"stiffness"`
	Gravity      float64 `yaml:"gravity"`
	Dt           float64 `yaml:"dt"`
	DampenFactor float64 `yaml:"dampen_factor"`
	Substeps     int     `yaml:"substeps"`
	RelaxIters   int     `yaml:"relax_iters"`
}

type WindConfig struct {
	Enabled bool    `yaml:"enabled"`
	Min     Point   `yaml:"min"`
	Max     Point   `yaml:"max"`
	Force   Point   `yaml:"force"`
	Width   float64 `yaml:"width"`
	Gust    float64 `yaml:"gust"`
	Seed    int64   `yaml:"seed"`
}

type MouseConfig struct {
	Force  Point   `yaml:"force"`
	Radius float64 `yaml:"radius"`
}

type RunConfig struct {
	Ticks       int `yaml:"ticks"`
	SampleEvery int `yaml:"sample_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Lattice: LatticeConfig{
			NodesX: DefaultNodesX,
			NodesY: DefaultNodesY,
			Mass:   cloth.DefaultParticleMass,
		},
		Physics: PhysicsConfig{
			RestLength:   cloth.DefaultRestLength,
			Stiffness:    cloth.DefaultStiffness,
			Gravity:      cloth.DefaultGravity,
			Dt:           cloth.DefaultDt,
			DampenFactor: cloth.DefaultDampen,
			Substeps:     cloth.DefaultSubsteps,
			RelaxIters:   cloth.DefaultRelaxIters,
		},
		Wind: WindConfig{
			Min:   Point{X: 0, Y: -DefaultWindDepth},
			Max:   Point{X: DefaultWindSpan, Y: 0},
			Force: Point{X: DefaultWindForceX, Y: DefaultWindForceY},
			Width: DefaultWindWidth,
		},
		Mouse: MouseConfig{
			Force:  Point{X: cloth.DefaultMouseForceX},
			Radius: cloth.DefaultMouseRadius,
		},
		Run: RunConfig{
			Ticks:       DefaultTicks,
			SampleEvery: DefaultSampleEvery,
		},
	}
}

// Load reads a YAML file on top of the defaults, so a file only needs the
// fields it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if c.Lattice.NodesX < 1 || c.Lattice.NodesY < 1 {
		return fmt.Errorf("%w: lattice must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Lattice.NodesX, c.Lattice.NodesY)
	}
	if !(c.Lattice.Mass > 0) {
		return fmt.Errorf("%w: lattice mass must be positive, got %v", ErrInvalidConfig, c.Lattice.Mass)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: physics: %w", ErrInvalidConfig, err)
	}
	if !(c.Wind.Width > 0) {
		return fmt.Errorf("%w: wind width must be positive, got %v", ErrInvalidConfig, c.Wind.Width)
	}
	if c.Wind.Min.X > c.Wind.Max.X || c.Wind.Min.Y > c.Wind.Max.Y {
		return fmt.Errorf("%w: wind rectangle min %v exceeds max %v", ErrInvalidConfig, c.Wind.Min, c.Wind.Max)
	}
	if c.Run.Ticks < 0 {
		return fmt.Errorf("%w: run ticks must be non-negative, got %d", ErrInvalidConfig, c.Run.Ticks)
	}
	if c.Run.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", ErrInvalidConfig, c.Run.SampleEvery)
	}
	return nil
}

func (c *Config) Params() cloth.Params {
	return cloth.Params{
		RestLength:   c.Physics.RestLength,
		Stiffness:    c.Physics.Stiffness,
		Gravity:      c.Physics.Gravity,
		Dt:           c.Physics.Dt,
		DampenFactor: c.Physics.DampenFactor,
		EnableWind:   c.Wind.Enabled,
		MouseForce:   c.Mouse.Force.Vec(),
		MouseRadius:  c.Mouse.Radius,
		Substeps:     c.Physics.Substeps,
		RelaxIters:   c.Physics.RelaxIters,
	}
}

// NewWind builds a fresh wind field. Each simulator needs its own since the
// field moves as it is stepped.
func (c *Config) NewWind() *cloth.WindField {
	w := cloth.NewWindField(
		cloth.Rect{Min: c.Wind.Min.Vec(), Max: c.Wind.Max.Vec()},
		c.Wind.Force.Vec(),
		c.Wind.Width,
	)
	if c.Wind.Gust != 0 {
		w.WithGust(c.Wind.Gust, c.Wind.Seed)
	}
	return w
}

// Setup validates c and converts it into a simulator setup.
func (c *Config) Setup() (sim.Setup, error) {
	if err := c.Validate(); err != nil {
		return sim.Setup{}, err
	}
	return sim.Setup{
		NodesX: c.Lattice.NodesX,
		NodesY: c.Lattice.NodesY,
		Mass:   c.Lattice.Mass,
		Params: c.Params(),
		Wind:   c.NewWind(),
	}, nil
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		Ticks:         c.Run.Ticks,
		SampleEvery:   c.Run.SampleEvery,
		ValidateState: true,
	}
}

// Extent is the larger of the cloth's rest width and height, used to size
// stability bounds and camera framing.
func (c *Config) Extent() float64 {
	r0 := c.Physics.RestLength
	return max(float64(c.Lattice.NodesX-1)*r0, float64(c.Lattice.NodesY-1)*r0, r0)
}
