package config

import (
	"slices"

	"github.com/san-kum/nbodysim/internal/scene"
)

// Preset is a named scene configuration layered over the defaults.
type Preset struct {
	Description string
	apply       func(c *Config)
}

var Presets = map[string]Preset{
	"nbody2": {
		Description: "10 orbiters, spread radii, kinematic update",
		apply: func(c *Config) {
			c.Bodies = 10
			c.Dt = 100
			c.Force = ForceKinematic
			c.Distance.Policy = string(scene.RadiusSpread)
			c.Strategy.Kind = "sequential"
		},
	},
	"nbody3": {
		Description: "200 orbiters, banded radii, sequential gravity",
		apply: func(c *Config) {
			c.Bodies = 200
			c.Dt = 10
			c.Force = ForceGravity
			c.Distance.Policy = string(scene.RadiusBanded)
			c.Strategy.Kind = "sequential"
		},
	},
	"nbody4": {
		Description: "5000 orbiters, banded radii, parallel gravity",
		apply: func(c *Config) {
			c.Bodies = 5000
			c.Dt = 10
			c.Force = ForceGravity
			c.Distance.Policy = string(scene.RadiusBanded)
			c.Strategy.Kind = "parallel"
		},
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Scene = name
	p.apply(cfg)
	return cfg
}

// Apply overlays the named preset's scene settings on c.
func (c *Config) Apply(name string) bool {
	p, ok := Presets[name]
	if !ok {
		return false
	}
	c.Scene = name
	p.apply(c)
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
