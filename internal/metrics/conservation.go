package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/vmath"
)

// MomentumDrift is the largest |P(t) - P(0)| seen so far.
type MomentumDrift struct {
	name     string
	initial  vmath.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s *nbody.Simulation) {
	p := s.Momentum()
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vmath.Zero
	m.maxDrift = 0
	m.samples = 0
}

// MassDrift is the largest relative change of total active mass.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(s *nbody.Simulation) {
	mass := s.TotalMass()
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++
	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(mass-m.initial)/m.initial)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// Survivors is the fraction of the starting bodies still active.
type Survivors struct {
	name    string
	initial int
	current int
	samples int
}

func NewSurvivors() *Survivors {
	return &Survivors{name: "survivors"}
}

func (v *Survivors) Name() string { return v.name }

func (v *Survivors) Observe(s *nbody.Simulation) {
	n := s.ActiveCount()
	if v.samples == 0 {
		v.initial = n
	}
	v.samples++
	v.current = n
}

func (v *Survivors) Value() float64 {
	if v.initial == 0 {
		return 1.0
	}
	return float64(v.current) / float64(v.initial)
}

func (v *Survivors) Reset() {
	v.initial = 0
	v.current = 0
	v.samples = 0
}

// Standard returns a fresh set of every metric in this package.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(),
		NewEnergy(),
		NewMomentumDrift(),
		NewMassDrift(),
		NewSurvivors(),
	}
}
