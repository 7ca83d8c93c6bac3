package nbody

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/rng"
	"github.com/san-kum/gravsim/internal/vmath"
)

// G is the gravitational constant in simulation units.
const G = 1.0

// Merge records one absorption during Update.
type Merge struct {
	Time     float64 // simulation time at the start of the step
	Absorber int
	Absorbed int
	Mass     float64
}

type Simulation struct {
	bodies []Body
	seed   int64
	time   float64
	merges int

	// OnMerge, if set, is called for every merge while Update runs.
	OnMerge func(Merge)
}

// New takes ownership of bodies. seed is kept for display only.
func New(bodies []Body, seed int64) *Simulation {
	return &Simulation{bodies: bodies, seed: seed}
}

// FromConfig samples a fresh body set from a source seeded with seed.
func FromConfig(cfg InitConfig, seed int64) (*Simulation, error) {
	bodies, err := Initialize(cfg, rng.New(seed))
	if err != nil {
		return nil, err
	}
	return New(bodies, seed), nil
}

func (s *Simulation) Seed() int64   { return s.seed }
func (s *Simulation) Time() float64 { return s.time }
func (s *Simulation) Merges() int   { return s.merges }
func (s *Simulation) Len() int      { return len(s.bodies) }

func (s *Simulation) ActiveCount() int {
	n := 0
	for i := range s.bodies {
		if s.bodies[i].Active {
			n++
		}
	}
	return n
}

// Bodies returns a copy of the active bodies in index order.
func (s *Simulation) Bodies() []Body {
	out := make([]Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// All returns a copy of every body, absorbed ones included.
func (s *Simulation) All() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Update advances the system by dt.
func (s *Simulation) Update(dt float64) {
	s.updatePositions(dt)
	s.updateMomenta(dt)
	s.time += dt
}

// Step is Update with the timestep checked first.
func (s *Simulation) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}
	s.Update(dt)
	return nil
}

func (s *Simulation) updatePositions(dt float64) {
	for i := range s.bodies {
		b := &s.bodies[i]
		if !b.Active {
			continue
		}
		b.Pos = b.Pos.Add(b.Mom.Scale(dt / b.Mass))
	}
}

// updateMomenta sums the force on each active body and merges touching
// pairs. Every pair reads the bodies' current flags and values, since a merge
// earlier in the pass may have changed either side.
func (s *Simulation) updateMomenta(dt float64) {
	n := len(s.bodies)
	for i := 0; i < n; i++ {
		if !s.bodies[i].Active {
			continue
		}

		var force vmath.Vec2
		for j := 0; j < n; j++ {
			if i == j || !s.bodies[j].Active {
				continue
			}
			bi, bj := &s.bodies[i], &s.bodies[j]

			rij := bi.Pos.Sub(bj.Pos)
			dist := rij.Len()

			if dist < bi.Radius+bj.Radius {
				s.merge(i, j)
				if !s.bodies[i].Active {
					break
				}
				continue
			}

			f := -G * bi.Mass * bj.Mass / (dist * dist * dist)
			force = force.Add(rij.Scale(f))
		}

		if bi := &s.bodies[i]; bi.Active {
			bi.Mom = bi.Mom.Add(force.Scale(dt))
		}
	}
}

// merge lets the heavier of i and j absorb the other; on equal mass the
// lower index absorbs.
func (s *Simulation) merge(i, j int) {
	a, b := i, j
	if s.bodies[j].Mass > s.bodies[i].Mass ||
		(s.bodies[j].Mass == s.bodies[i].Mass && j < i) {
		a, b = j, i
	}

	s.bodies[a].absorb(&s.bodies[b])
	s.merges++

	if s.OnMerge != nil {
		s.OnMerge(Merge{
			Time:     s.time,
			Absorber: s.bodies[a].Index,
			Absorbed: s.bodies[b].Index,
			Mass:     s.bodies[a].Mass,
		})
	}
}
