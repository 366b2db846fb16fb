package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/scene"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScene       = "nbody4"
	DefaultBodies      = 200
	DefaultDt          = 10.0
	DefaultFrames      = 500
	DefaultMinDistance = 20.0
	DefaultMaxDistance = 54.0
	DefaultWidth       = 80
	DefaultHeight      = 30
	DefaultFPS         = 30
	DefaultRunsDir     = "runs"
)

const (
	ForceGravity   = "gravity"
	ForceKinematic = "kinematic"
)

type Config struct {
	Scene      string         `yaml:"scene" toml:"scene"`
	Bodies     int            `yaml:"bodies" toml:"bodies"`
	Gravity    float64        `yaml:"gravity" toml:"gravity"`
	AnchorMass float64        `yaml:"anchor_mass" toml:"anchor_mass"`
	BodyMass   float64        `yaml:"body_mass" toml:"body_mass"`
	Epsilon    float64        `yaml:"epsilon" toml:"epsilon"`
	Dt         float64        `yaml:"dt" toml:"dt"`
	Frames     int            `yaml:"frames" toml:"frames"`
	Seed       uint64         `yaml:"seed" toml:"seed"`
	Force      string         `yaml:"force" toml:"force"`
	Distance   DistanceConfig `yaml:"distance" toml:"distance"`
	Strategy   StrategyConfig `yaml:"strategy" toml:"strategy"`
	Render     RenderConfig   `yaml:"render" toml:"render"`
	Logging    LoggingConfig  `yaml:"logging" toml:"logging"`
	RunsDir    string         `yaml:"runs_dir" toml:"runs_dir"`
}

type DistanceConfig struct {
	Min          float64 `yaml:"min" toml:"min"`
	Max          float64 `yaml:"max" toml:"max"`
	Policy       string  `yaml:"policy" toml:"policy"` // spread, banded or fixed
	SpreadFactor float64 `yaml:"spread_factor" toml:"spread_factor"`
	BandOffset   float64 `yaml:"band_offset" toml:"band_offset"`
	MinRadius    float64 `yaml:"min_radius" toml:"min_radius"`
}

type StrategyConfig struct {
	Kind      string `yaml:"kind" toml:"kind"`           // sequential, parallel or auto
	Threshold int    `yaml:"threshold" toml:"threshold"` // auto switches to parallel at this many orbiters
	Backend   string `yaml:"backend" toml:"backend"`
	Workers   int    `yaml:"workers" toml:"workers"` // 0 = one per CPU
	Fallback  string `yaml:"fallback" toml:"fallback"`
}

type RenderConfig struct {
	AnchorScale  float64 `yaml:"anchor_scale" toml:"anchor_scale"`
	OrbiterScale float64 `yaml:"orbiter_scale" toml:"orbiter_scale"`
	Width        int     `yaml:"width" toml:"width"`
	Height       int     `yaml:"height" toml:"height"`
	FPS          int     `yaml:"fps" toml:"fps"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
	File   string `yaml:"file" toml:"file"`     // empty logs to stderr
}

func DefaultConfig() *Config {
	return &Config{
		Scene:      DefaultScene,
		Bodies:     DefaultBodies,
		Gravity:    float64(physics.GravitationalConstant),
		AnchorMass: float64(physics.SunMass),
		BodyMass:   float64(physics.DefaultBodyMass),
		Epsilon:    float64(physics.DefaultEpsilon),
		Dt:         DefaultDt,
		Frames:     DefaultFrames,
		Seed:       1,
		Force:      ForceGravity,
		Distance: DistanceConfig{
			Min:          DefaultMinDistance,
			Max:          DefaultMaxDistance,
			Policy:       string(scene.RadiusBanded),
			SpreadFactor: scene.DefaultSpreadFactor,
			BandOffset:   scene.DefaultBandOffset,
			MinRadius:    scene.DefaultMinRadius,
		},
		Strategy: StrategyConfig{
			Kind:      "auto",
			Threshold: 1000,
			Backend:   compute.BackendCPU,
			Fallback:  "none",
		},
		Render: RenderConfig{
			AnchorScale:  scene.DefaultAnchorScale,
			OrbiterScale: scene.DefaultOrbiterScale,
			Width:        DefaultWidth,
			Height:       DefaultHeight,
			FPS:          DefaultFPS,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RunsDir: DefaultRunsDir,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML file, or TOML when the extension is .toml, over the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations that cannot produce a working scene.
func (c *Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", dynamo.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Bodies < 1:
		return bad("bodies must be at least 1, got %d", c.Bodies)
	case c.Dt <= 0:
		return bad("dt must be positive, got %g", c.Dt)
	case c.Epsilon < 0:
		return bad("epsilon must not be negative, got %g", c.Epsilon)
	case c.Gravity < 0 || c.AnchorMass < 0 || c.BodyMass < 0:
		return bad("gravity and masses must not be negative")
	case c.Distance.Min < 0 || c.Distance.Max < c.Distance.Min:
		return bad("distance band [%g, %g]", c.Distance.Min, c.Distance.Max)
	case c.Distance.MinRadius <= 0:
		return bad("min_radius must be positive, got %g", c.Distance.MinRadius)
	case c.Strategy.Workers < 0:
		return bad("workers must not be negative, got %d", c.Strategy.Workers)
	}

	if !slices.Contains(scene.RadiusPolicies(), scene.RadiusPolicy(c.Distance.Policy)) {
		return bad("unknown radius policy %q", c.Distance.Policy)
	}
	if c.Force != ForceGravity && c.Force != ForceKinematic {
		return bad("unknown force %q", c.Force)
	}
	if !slices.Contains([]string{"sequential", "parallel", "auto"}, c.Strategy.Kind) {
		return bad("unknown strategy %q", c.Strategy.Kind)
	}
	if !slices.Contains(compute.Backends(), c.Strategy.Backend) {
		return bad("unknown backend %q", c.Strategy.Backend)
	}
	if c.Strategy.Fallback != "none" && c.Strategy.Fallback != "sequential" {
		return bad("unknown fallback %q", c.Strategy.Fallback)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return bad("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// ForceModel returns the configured force law.
func (c *Config) ForceModel() physics.ForceModel {
	if c.Force == ForceKinematic {
		return physics.Kinematic{}
	}
	return physics.NewGravity(float32(c.Gravity), float32(c.Epsilon))
}

// InitParams converts the body-system part of the configuration.
func (c *Config) InitParams() scene.InitParams {
	return scene.InitParams{
		Orbiters:     c.Bodies,
		G:            float32(c.Gravity),
		AnchorMass:   float32(c.AnchorMass),
		BodyMass:     float32(c.BodyMass),
		MinDistance:  float32(c.Distance.Min),
		MaxDistance:  float32(c.Distance.Max),
		Policy:       scene.RadiusPolicy(c.Distance.Policy),
		SpreadFactor: float32(c.Distance.SpreadFactor),
		BandOffset:   float32(c.Distance.BandOffset),
		MinRadius:    float32(c.Distance.MinRadius),
		AnchorScale:  float32(c.Render.AnchorScale),
		OrbiterScale: float32(c.Render.OrbiterScale),
		Seed:         c.Seed,
	}
}
