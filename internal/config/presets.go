package config

import (
	"slices"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Presets are named scenarios built on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"drape": func(c *Config) {},
	"windy": func(c *Config) {
		c.Wind.Enabled = true
		c.Wind.Gust = 0.6
		c.Wind.Seed = 7
		c.Run.Ticks = 1200
	},
	"stiff": func(c *Config) {
		c.Physics.Stiffness = 80000
		c.Physics.Substeps = 8
		c.Physics.RelaxIters = 6
	},
	"banner": func(c *Config) {
		c.Lattice.NodesX, c.Lattice.NodesY = 40, 8
		c.Wind.Enabled = true
		c.Wind.Max = Point{X: 400, Y: 0}
		c.Wind.Force = Point{X: 1500, Y: 100}
		c.Wind.Width = 800
	},
	"tiny": func(c *Config) {
		c.Lattice.NodesX, c.Lattice.NodesY = 3, 3
		c.Physics.RestLength = 40
		c.Physics.Stiffness = 7
		c.Physics.Gravity = 100
		c.Physics.Substeps = cloth.DefaultSubsteps
		c.Physics.RelaxIters = cloth.DefaultRelaxIters
		c.Run.Ticks = 100
	},
}

// GetPreset returns a fresh config for name, or nil if there is none.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
