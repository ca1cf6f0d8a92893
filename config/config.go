// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Field      FieldConfig      `yaml:"field"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Links      LinksConfig      `yaml:"links"`
	Attractors AttractorsConfig `yaml:"attractors"`
	Colors     ColorsConfig     `yaml:"colors"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FieldConfig holds the simulated field dimensions.
// The field can differ from the screen; the camera handles the viewport.
type FieldConfig struct {
	Width  int `yaml:"width"`  // Field width in pixels (0 = use screen width)
	Height int `yaml:"height"` // Field height in pixels (0 = use screen height)
}

// ParticlesConfig holds particle population parameters.
type ParticlesConfig struct {
	Count       int     `yaml:"count"`        // Population size, fixed at start
	Radius      float64 `yaml:"radius"`       // Boundary offset and draw radius
	MaxVelocity float64 `yaml:"max_velocity"` // Per-axis initial speed spread
	Groups      int     `yaml:"groups"`       // Number of attractor groups
}

// LinksConfig holds link graph parameters.
type LinksConfig struct {
	MaxDistance float64 `yaml:"max_distance"` // Link threshold, also the minimum grid cell size
}

// AttractorsConfig holds acceleration field parameters.
type AttractorsConfig struct {
	Acceleration float64 `yaml:"acceleration"` // Pull magnitude toward the assigned attractor
}

// ColorsConfig holds draw colours as #rrggbb or #rrggbbaa strings.
type ColorsConfig struct {
	Background string `yaml:"background"`
	Particle   string `yaml:"particle"`
	Link       string `yaml:"link"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of simulated time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FieldW float64 // Effective field width
	FieldH float64 // Effective field height
	CellsX int     // Grid columns: floor(FieldW / MaxDistance), at least 1
	CellsY int     // Grid rows: floor(FieldH / MaxDistance), at least 1
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks the parameters the simulation relies on.
func (c *Config) Validate() error {
	var errs []error

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Field.Width < 0 || c.Field.Height < 0 {
		errs = append(errs, fmt.Errorf("field size must not be negative, got %dx%d", c.Field.Width, c.Field.Height))
	}
	if c.Particles.Count < 0 {
		errs = append(errs, fmt.Errorf("particle count must not be negative, got %d", c.Particles.Count))
	}
	if c.Particles.Radius < 0 {
		errs = append(errs, fmt.Errorf("particle radius must not be negative, got %v", c.Particles.Radius))
	}
	if c.Particles.Groups < 1 {
		errs = append(errs, fmt.Errorf("particle groups must be at least 1, got %d", c.Particles.Groups))
	}
	if c.Links.MaxDistance <= 0 {
		errs = append(errs, fmt.Errorf("links.max_distance must be positive, got %v", c.Links.MaxDistance))
	}
	// A particle must never cross more than one cell per tick at its initial speed.
	if c.Particles.MaxVelocity < 0 || c.Particles.MaxVelocity >= c.Links.MaxDistance {
		errs = append(errs, fmt.Errorf("particles.max_velocity must be in [0, links.max_distance), got %v", c.Particles.MaxVelocity))
	}

	return errors.Join(errs...)
}

// ComputeDerived calculates values derived from loaded config.
func (c *Config) ComputeDerived() {
	// Field dimensions default to screen size if not specified
	fieldW := c.Field.Width
	if fieldW == 0 {
		fieldW = c.Screen.Width
	}
	fieldH := c.Field.Height
	if fieldH == 0 {
		fieldH = c.Screen.Height
	}
	c.Derived.FieldW = float64(fieldW)
	c.Derived.FieldH = float64(fieldH)

	c.Derived.CellsX = cellCount(c.Derived.FieldW, c.Links.MaxDistance)
	c.Derived.CellsY = cellCount(c.Derived.FieldH, c.Links.MaxDistance)
}

// cellCount returns floor(dim / threshold), never less than one cell.
func cellCount(dim, threshold float64) int {
	if threshold <= 0 {
		return 1
	}
	n := int(math.Floor(dim / threshold))
	if n < 1 {
		n = 1
	}
	return n
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
