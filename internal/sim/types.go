package sim

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/vmath"
)

type Metric interface {
	Name() string
	Observe(s *nbody.Simulation)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *nbody.Simulation, step int)
}

type Config struct {
	Dt            float64
	Duration      float64
	SampleEvery   int
	ValidateState bool
}

// Sample is a whole-system reading taken between steps.
type Sample struct {
	Time     float64    `json:"time"`
	Active   int        `json:"active"`
	Mass     float64    `json:"mass"`
	Momentum vmath.Vec2 `json:"momentum"`
	AngMom   float64    `json:"angmom"`
	Energy   float64    `json:"energy"`
}

func SampleOf(s *nbody.Simulation) Sample {
	return Sample{
		Time:     s.Time(),
		Active:   s.ActiveCount(),
		Mass:     s.TotalMass(),
		Momentum: s.Momentum(),
		AngMom:   s.AngularMomentum(),
		Energy:   s.Energy(),
	}
}

type Result struct {
	Seed        int64
	Samples     []Sample
	Merges      []nbody.Merge
	Final       []nbody.Body
	StepsTaken  int
	EnergyDrift float64
	Metrics     map[string]float64
}

// SimulationError carries the step at which a run failed.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
