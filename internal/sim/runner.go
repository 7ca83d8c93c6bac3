package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
)

const (
	// MaxSteps bounds the fixed steps of a single run.
	MaxSteps = 1 << 30

	// maxSampleHint caps the samples preallocated before a run.
	maxSampleHint = 1 << 16
)

type Runner struct {
	metrics   []Metric
	observers []Observer
}

func NewRunner() *Runner {
	return &Runner{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run steps s for cfg.Duration with a fixed dt. The first sample is the
// initial state; further samples are taken every cfg.SampleEvery steps and
// after the last step. On cancellation or an invalid state the partial result
// is returned with the error.
func (r *Runner) Run(ctx context.Context, s *nbody.Simulation, cfg Config) (*Result, error) {
	steps, err := StepCount(cfg.Dt, cfg.Duration)
	if err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}

	result := &Result{
		Seed:    s.Seed(),
		Samples: make([]Sample, 0, min(steps/every+2, maxSampleHint)),
		Metrics: make(map[string]float64),
	}

	prev := s.OnMerge
	s.OnMerge = func(m nbody.Merge) {
		result.Merges = append(result.Merges, m)
		if prev != nil {
			prev(m)
		}
	}
	defer func() { s.OnMerge = prev }()

	for _, m := range r.metrics {
		m.Reset()
		m.Observe(s)
	}

	first := SampleOf(s)
	result.Samples = append(result.Samples, first)

	finish := func() {
		result.Final = s.Bodies()
		if first.Energy != 0 {
			result.EnergyDrift = math.Abs(s.Energy()-first.Energy) / math.Abs(first.Energy)
		}
		for _, m := range r.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			finish()
			return result, ctx.Err()
		default:
		}

		s.Update(cfg.Dt)
		result.StepsTaken++

		if cfg.ValidateState && !s.Valid() {
			finish()
			return result, &SimulationError{Step: i, Time: s.Time(), Wrapped: nbody.ErrInvalidState}
		}

		for _, m := range r.metrics {
			m.Observe(s)
		}
		for _, obs := range r.observers {
			obs.OnStep(s, i)
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.Samples = append(result.Samples, SampleOf(s))
		}
	}

	finish()
	return result, nil
}

// RunWithCallback steps s until the callback returns false, the context is
// done or cfg.Duration has elapsed. It records nothing.
func (r *Runner) RunWithCallback(ctx context.Context, s *nbody.Simulation, cfg Config, callback func(*nbody.Simulation) bool) error {
	steps, err := StepCount(cfg.Dt, cfg.Duration)
	if err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s) {
			return nil
		}

		s.Update(cfg.Dt)

		if cfg.ValidateState && !s.Valid() {
			return &SimulationError{Step: i, Time: s.Time(), Wrapped: nbody.ErrInvalidState}
		}
	}
	return nil
}

// StepCount returns the number of fixed steps of dt covering duration.
func StepCount(dt, duration float64) (int, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("%w: %v", nbody.ErrInvalidTimestep, dt)
	}
	if dt <= 0 {
		return 0, fmt.Errorf("%w: dt must be positive, got %f", nbody.ErrInvalidConfig, dt)
	}
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, fmt.Errorf("%w: duration must be finite and non-negative, got %f", nbody.ErrInvalidConfig, duration)
	}

	n := math.Floor(duration/dt + 0.5)
	if n > MaxSteps {
		return 0, fmt.Errorf("%w: duration %g at dt %g needs %.3g steps, limit is %d",
			nbody.ErrInvalidConfig, duration, dt, n, MaxSteps)
	}
	return int(n), nil
}
