package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 20.0
	DefaultSeed        = 10
	DefaultSampleEvery = 10
	DefaultTimeScale   = 1.0
)

type Config struct {
	Policy        string     `yaml:"policy"`
	Seed          int64      `yaml:"seed"`
	Dt            float64    `yaml:"dt"`
	Duration      float64    `yaml:"duration"`
	SampleEvery   int        `yaml:"sample_every"`
	TimeScale     float64    `yaml:"time_scale"`
	ValidateState bool       `yaml:"validate_state"`
	InitState     InitConfig `yaml:"init_state"`
	View          ViewConfig `yaml:"view"`
}

type InitConfig struct {
	NumBodies    int     `yaml:"num_bodies"`
	MinMass      float64 `yaml:"min_mass"`
	MaxMass      float64 `yaml:"max_mass"`
	MaxPos       float64 `yaml:"max_pos"`
	MaxMom       float64 `yaml:"max_mom"`
	AngMomMean   float64 `yaml:"angmom_mean"`
	AngMomStdDev float64 `yaml:"angmom_stddev"`
}

type ViewConfig struct {
	Zoom   float64 `yaml:"zoom"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    int     `yaml:"fps"`
}

func DefaultConfig() *Config {
	return &Config{
		Policy:        string(nbody.PolicyAngular),
		Seed:          DefaultSeed,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		SampleEvery:   DefaultSampleEvery,
		TimeScale:     DefaultTimeScale,
		ValidateState: true,
		InitState: InitConfig{
			NumBodies:    nbody.DefaultBodies,
			MinMass:      nbody.DefaultMinMass,
			MaxMass:      nbody.DefaultMaxMass,
			MaxPos:       nbody.DefaultMaxPos,
			MaxMom:       nbody.DefaultMaxMom,
			AngMomMean:   nbody.DefaultAngMomMean,
			AngMomStdDev: nbody.DefaultAngMomStdDev,
		},
		View: ViewConfig{
			Zoom:   1.0,
			Width:  1280,
			Height: 720,
			FPS:    60,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Validate checks the run parameters and the initial-condition parameters.
func (c *Config) Validate() error {
	if _, err := sim.StepCount(c.Dt, c.Duration); err != nil {
		return err
	}
	if c.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", nbody.ErrInvalidConfig, c.SampleEvery)
	}
	if c.TimeScale < 0 {
		return fmt.Errorf("%w: time_scale must be non-negative, got %f", nbody.ErrInvalidConfig, c.TimeScale)
	}
	if err := c.View.Validate(); err != nil {
		return err
	}
	return c.Sampling().Validate()
}

// Validate checks the window settings used by the live views.
func (v ViewConfig) Validate() error {
	if !(v.Zoom > 0) || math.IsInf(v.Zoom, 0) {
		return fmt.Errorf("%w: view zoom must be positive, got %f", nbody.ErrInvalidConfig, v.Zoom)
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: view size must be positive, got %dx%d", nbody.ErrInvalidConfig, v.Width, v.Height)
	}
	if v.FPS <= 0 {
		return fmt.Errorf("%w: view fps must be positive, got %d", nbody.ErrInvalidConfig, v.FPS)
	}
	return nil
}

// Sampling converts the yaml block into the sampler's parameters.
func (c *Config) Sampling() nbody.InitConfig {
	return nbody.InitConfig{
		Bodies:       c.InitState.NumBodies,
		Policy:       nbody.Policy(c.Policy),
		MinMass:      c.InitState.MinMass,
		MaxMass:      c.InitState.MaxMass,
		MaxPos:       c.InitState.MaxPos,
		MaxMom:       c.InitState.MaxMom,
		AngMomMean:   c.InitState.AngMomMean,
		AngMomStdDev: c.InitState.AngMomStdDev,
	}
}

// Steps is the number of fixed steps covering Duration, or 0 when Dt and
// Duration do not form a valid run.
func (c *Config) Steps() int {
	n, err := sim.StepCount(c.Dt, c.Duration)
	if err != nil {
		return 0
	}
	return n
}

// Clone returns a copy so presets are never mutated in place.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
