package sim

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

// EventKind identifies a discrete input event.
type EventKind int

const (
	EventImpulse EventKind = iota
	EventCut
	EventReset
	EventToggleWind
)

func (k EventKind) String() string {
	switch k {
	case EventImpulse:
		return "impulse"
	case EventCut:
		return "cut"
	case EventReset:
		return "reset"
	case EventToggleWind:
		return "toggle-wind"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is an input event applied between ticks. Point is in world space and
// is ignored by Reset and ToggleWind.
type Event struct {
	Kind  EventKind
	Point cloth.Vec2
}

func Impulse(p cloth.Vec2) Event { return Event{Kind: EventImpulse, Point: p} }
func Cut(p cloth.Vec2) Event     { return Event{Kind: EventCut, Point: p} }
func Reset() Event               { return Event{Kind: EventReset} }
func ToggleWind() Event          { return Event{Kind: EventToggleWind} }

// Frame is a consistent copy of the lattice taken between ticks.
type Frame struct {
	Tick      int
	Time      float64
	Positions []cloth.Vec2
	Prev      []cloth.Vec2
	Mass      []float64
	Pinned    []bool
	Edges     []cloth.Spring
	Params    cloth.Params
	Wind      cloth.Rect
	WindOn    bool
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(f *Frame)
}

// Setup describes the lattice a Simulator is built from.
type Setup struct {
	NodesX, NodesY int
	Mass           float64
	Params         cloth.Params
	Wind           *cloth.WindField
}

// Script supplies input events for a headless run. EventsAt is called
// before each tick with the number of ticks already taken.
type Script interface {
	EventsAt(tick int) []Event
}

type Config struct {
	Ticks         int
	SampleEvery   int
	ValidateState bool
	Script        Script
}

func DefaultConfig() Config {
	return Config{
		Ticks:         600,
		SampleEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	Times       []float64
	MetricNames []string
	Series      map[string][]float64
	Metrics     map[string]float64
	Final       *Frame
	TicksTaken  int
	Errors      []error
}
