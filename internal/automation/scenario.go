package automation

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted sequence of interaction events for a headless run.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step fires one event at a tick. Repeat > 1 fires it again on each of the
// following ticks, which is how a held mouse button is scripted.
type Step struct {
	Tick   int     `yaml:"tick"`
	Event  string  `yaml:"event"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Repeat int     `yaml:"repeat"`
}

var eventKinds = map[string]sim.EventKind{
	"impulse":     sim.EventImpulse,
	"cut":         sim.EventCut,
	"reset":       sim.EventReset,
	"toggle-wind": sim.EventToggleWind,
}

// LoadScenario loads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, step := range s.Steps {
		if _, ok := eventKinds[step.Event]; !ok {
			return fmt.Errorf("%w: step %d: unknown event %q", ErrInvalidScenario, i+1, step.Event)
		}
		if step.Tick < 0 {
			return fmt.Errorf("%w: step %d: negative tick %d", ErrInvalidScenario, i+1, step.Tick)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("%w: step %d: negative repeat %d", ErrInvalidScenario, i+1, step.Repeat)
		}
	}
	return nil
}

// Script compiles the scenario into a tick-indexed event schedule. Events
// sharing a tick keep their file order.
func (s *Scenario) Script() *Script {
	sc := &Script{events: make(map[int][]sim.Event)}
	for _, step := range s.Steps {
		ev := sim.Event{Kind: eventKinds[step.Event], Point: cloth.V(step.X, step.Y)}
		for i := range max(step.Repeat, 1) {
			t := step.Tick + i
			sc.events[t] = append(sc.events[t], ev)
			sc.last = max(sc.last, t)
		}
	}
	return sc
}

// Script implements sim.Script.
type Script struct {
	events map[int][]sim.Event
	last   int
}

func (s *Script) EventsAt(tick int) []sim.Event {
	return s.events[tick]
}

// Ticks lists the ticks that carry events, in order.
func (s *Script) Ticks() []int {
	ticks := make([]int, 0, len(s.events))
	for t := range s.events {
		ticks = append(ticks, t)
	}
	slices.Sort(ticks)
	return ticks
}

// Last is the final tick with an event.
func (s *Script) Last() int { return s.last }
