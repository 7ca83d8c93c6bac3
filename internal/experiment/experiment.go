package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Experiment is one configured run: a freshly sampled simulation and a runner
// carrying the standard metrics.
type Experiment struct {
	cfg        *config.Config
	simulation *nbody.Simulation
	runner     *sim.Runner
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := nbody.FromConfig(cfg.Sampling(), cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("sample bodies: %w", err)
	}

	runner := sim.NewRunner()
	for _, m := range metrics.Standard() {
		runner.AddMetric(m)
	}

	return &Experiment{cfg: cfg, simulation: s, runner: runner}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.runner.Run(ctx, e.simulation, RunConfig(e.cfg))
}

// Runner returns the underlying runner for adding observers.
func (e *Experiment) Runner() *sim.Runner { return e.runner }

func (e *Experiment) Simulation() *nbody.Simulation { return e.simulation }

func (e *Experiment) Info() storage.RunInfo { return Info(e.cfg) }

func RunConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		SampleEvery:   cfg.SampleEvery,
		ValidateState: cfg.ValidateState,
	}
}

func Info(cfg *config.Config) storage.RunInfo {
	return storage.RunInfo{
		Policy:   cfg.Policy,
		Bodies:   cfg.InitState.NumBodies,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
	}
}
