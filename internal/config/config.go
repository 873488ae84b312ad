package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gridsolve/internal/gradient"
	"github.com/san-kum/gridsolve/internal/stepper"
)

const (
	DefaultDt          = 0.01
	DefaultSteps       = 1000
	DefaultExtent      = 10.0
	DefaultRecordEvery = 10
	DefaultMass        = 1.0
	DefaultSigma       = 1.0
	DefaultCutoff      = 10.0
	DefaultDiffusivity = 1.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Experiment  string  `yaml:"experiment"`
	Method      string  `yaml:"method"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	T0          float64 `yaml:"t0"`
	Shape       []int   `yaml:"shape"`
	Extent      float64 `yaml:"extent"`
	RecordEvery int     `yaml:"record_every"`
	CheckFinite bool    `yaml:"validate"`
	Params      Params  `yaml:"params"`
}

// Params holds the physical constants of an experiment. Fields an experiment
// does not use are ignored.
type Params struct {
	Mass        float64   `yaml:"mass"`
	Coupling    float64   `yaml:"coupling"`
	Cutoff      float64   `yaml:"cutoff"`
	Diffusivity float64   `yaml:"diffusivity"`
	ReleaseTime *float64  `yaml:"release_time,omitempty"`
	Sigma       float64   `yaml:"sigma"`
	Momentum    float64   `yaml:"momentum"`
	Trap        []float64 `yaml:"trap,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Experiment:  "diffusion",
		Method:      "rk4",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Shape:       []int{128},
		Extent:      DefaultExtent,
		RecordEvery: DefaultRecordEvery,
		Params: Params{
			Mass:        DefaultMass,
			Cutoff:      DefaultCutoff,
			Diffusivity: DefaultDiffusivity,
			Sigma:       DefaultSigma,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base: keys present in the file win,
// the rest keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
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

// Clone returns a deep copy, so presets can be handed out and then overridden.
func (c *Config) Clone() *Config {
	out := *c
	out.Shape = append([]int(nil), c.Shape...)
	out.Params.Trap = append([]float64(nil), c.Params.Trap...)
	if c.Params.ReleaseTime != nil {
		rt := *c.Params.ReleaseTime
		out.Params.ReleaseTime = &rt
	}
	return &out
}

func (c *Config) StepMethod() (stepper.Method, error) {
	return stepper.ParseMethod(c.Method)
}

// Duration is the simulated time span covered by the run.
func (c *Config) Duration() float64 {
	return float64(c.Steps) * c.Dt
}

func (c *Config) Validate() error {
	if c.Experiment == "" {
		return fmt.Errorf("%w: experiment is empty", ErrInvalidConfig)
	}
	if _, err := c.StepMethod(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Dt == 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be finite and non-zero, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidConfig, c.Steps)
	}
	if err := gradient.Validate(c.Shape); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for axis, n := range c.Shape {
		if n != c.Shape[0] {
			return fmt.Errorf("%w: axis %d has length %d, all axes must match for a uniform spacing", ErrInvalidConfig, axis, n)
		}
	}
	if c.Extent <= 0 {
		return fmt.Errorf("%w: extent must be positive, got %g", ErrInvalidConfig, c.Extent)
	}
	if c.RecordEvery < 1 {
		return fmt.Errorf("%w: record_every must be at least 1, got %d", ErrInvalidConfig, c.RecordEvery)
	}
	if n := len(c.Params.Trap); n != 0 && n != len(c.Shape) {
		return fmt.Errorf("%w: trap has %d entries for a rank %d grid", ErrInvalidConfig, n, len(c.Shape))
	}
	if c.Params.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidConfig, c.Params.Mass)
	}
	if c.Params.Sigma <= 0 {
		return fmt.Errorf("%w: sigma must be positive, got %g", ErrInvalidConfig, c.Params.Sigma)
	}
	return nil
}

// Spacing is the distance between neighbouring grid points along axis, for a
// domain spanning [-Extent, Extent].
func (c *Config) Spacing(axis int) float64 {
	return 2 * c.Extent / float64(c.Shape[axis]-1)
}

// ParamNames lists the names accepted by SetParam.
func ParamNames() []string {
	return []string{"dt", "t0", "extent", "mass", "coupling", "cutoff", "diffusivity", "sigma", "momentum", "release_time"}
}

// SetParam assigns one scalar setting by name, for parameter sweeps.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "dt":
		c.Dt = v
	case "t0":
		c.T0 = v
	case "extent":
		c.Extent = v
	case "mass":
		c.Params.Mass = v
	case "coupling":
		c.Params.Coupling = v
	case "cutoff":
		c.Params.Cutoff = v
	case "diffusivity":
		c.Params.Diffusivity = v
	case "sigma":
		c.Params.Sigma = v
	case "momentum":
		c.Params.Momentum = v
	case "release_time":
		c.Params.ReleaseTime = &v
	default:
		return fmt.Errorf("%w: unknown parameter %q (known: %v)", ErrInvalidConfig, name, ParamNames())
	}
	return nil
}
