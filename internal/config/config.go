package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

const (
	DefaultDt         = 0.001
	DefaultDuration   = 10.0
	DefaultG          = 1.0
	DefaultIntegrator = "rk4"
)

// BodyConfig is one body's initial condition in simulation units.
type BodyConfig struct {
	Mass float64    `yaml:"mass"`
	Pos  [2]float64 `yaml:"pos"`
	Vel  [2]float64 `yaml:"vel"`
}

// Config is the immutable description of one run: physical parameters,
// initial conditions, and integration settings. Construct it, validate
// it once, and pass it around by value semantics; nothing mutates it
// mid-run.
type Config struct {
	Bodies     []BodyConfig `yaml:"bodies"`
	G          float64      `yaml:"g"`
	Softening  float64      `yaml:"softening"`
	Dt         float64      `yaml:"dt"`
	Steps      int          `yaml:"steps"`
	Duration   float64      `yaml:"duration"`
	Integrator string       `yaml:"integrator"`
	// Recenter shifts the initial state so the center of mass is at the
	// origin with zero net momentum before integrating.
	Recenter bool `yaml:"recenter"`
	// WarnSeparation flags the run when the minimum pairwise distance
	// drops below this value. Zero disables the check.
	WarnSeparation float64 `yaml:"warn_separation"`
}

// Default returns the figure-eight choreography, the standard regression
// configuration.
func Default() *Config {
	cfg := GetPreset("figure-eight")
	return cfg
}

// Load reads a YAML config, filling unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects physically or numerically meaningless configurations
// before any integration starts.
func (c *Config) Validate() error {
	if len(c.Bodies) != physics.NumBodies {
		return fmt.Errorf("%w: exactly %d bodies required, got %d",
			sim.ErrInvalidConfig, physics.NumBodies, len(c.Bodies))
	}
	for i, b := range c.Bodies {
		if b.Mass <= 0 {
			return fmt.Errorf("%w: mass of body %d must be positive, got %v",
				sim.ErrInvalidConfig, i+1, b.Mass)
		}
	}
	if c.G <= 0 {
		return fmt.Errorf("%w: g must be positive, got %v", sim.ErrInvalidConfig, c.G)
	}
	if c.Softening < 0 {
		return fmt.Errorf("%w: softening must not be negative, got %v",
			sim.ErrInvalidConfig, c.Softening)
	}
	if c.Integrator != "" && c.Integrator != "rk4" && c.Integrator != "euler" {
		return fmt.Errorf("%w: unknown integrator %q", sim.ErrInvalidConfig, c.Integrator)
	}
	return c.SimConfig().Validate()
}

// Masses returns the body masses in order.
func (c *Config) Masses() [physics.NumBodies]float64 {
	var m [physics.NumBodies]float64
	for i := range m {
		m[i] = c.Bodies[i].Mass
	}
	return m
}

// System builds the ThreeBody model for this configuration.
func (c *Config) System() (*physics.ThreeBody, error) {
	return physics.NewThreeBody(c.Masses(), c.G, c.Softening)
}

// InitialState packs the configured bodies into the integrator's flat
// state, recentering on the center of mass if requested.
func (c *Config) InitialState() dynamo.State {
	var s physics.SystemState
	for i, b := range c.Bodies {
		s[i] = physics.Body{
			Mass: b.Mass,
			Pos:  mgl64.Vec2(b.Pos),
			Vel:  mgl64.Vec2(b.Vel),
		}
	}
	x := physics.Pack(s)
	if c.Recenter {
		x = physics.Recenter(x, c.Masses())
	}
	return x
}

// SimConfig extracts the driver's integration settings.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{Dt: c.Dt, Steps: c.Steps, Duration: c.Duration}
}

// IntegratorName resolves the configured integrator, defaulting to rk4.
func (c *Config) IntegratorName() string {
	if c.Integrator == "" {
		return DefaultIntegrator
	}
	return c.Integrator
}
