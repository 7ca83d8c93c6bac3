package nbody

import (
	"math"

	"github.com/san-kum/gravsim/internal/vmath"
)

func (s *Simulation) TotalMass() float64 {
	m := 0.0
	for _, b := range s.bodies {
		if b.Active {
			m += b.Mass
		}
	}
	return m
}

// Momentum returns the total linear momentum of the active bodies.
func (s *Simulation) Momentum() vmath.Vec2 {
	var p vmath.Vec2
	for _, b := range s.bodies {
		if b.Active {
			p = p.Add(b.Mom)
		}
	}
	return p
}

// AngularMomentum returns Σ r × p about the origin (counter-clockwise positive).
func (s *Simulation) AngularMomentum() float64 {
	l := 0.0
	for _, b := range s.bodies {
		if b.Active {
			l += b.Pos.Cross(b.Mom)
		}
	}
	return l
}

func (s *Simulation) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		if b.Active {
			ke += b.KineticEnergy()
		}
	}
	return ke
}

func (s *Simulation) PotentialEnergy() float64 {
	pe := 0.0
	n := len(s.bodies)
	for i := 0; i < n; i++ {
		if !s.bodies[i].Active {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !s.bodies[j].Active {
				continue
			}
			r := s.bodies[i].Pos.Sub(s.bodies[j].Pos).Len()
			if r > 0 {
				pe -= G * s.bodies[i].Mass * s.bodies[j].Mass / r
			}
		}
	}
	return pe
}

func (s *Simulation) Energy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

// CenterOfMass returns the mass-weighted mean position, or the origin when
// no body is active.
func (s *Simulation) CenterOfMass() vmath.Vec2 {
	var c vmath.Vec2
	m := 0.0
	for _, b := range s.bodies {
		if b.Active {
			c = c.Add(b.Pos.Scale(b.Mass))
			m += b.Mass
		}
	}
	if m == 0 {
		return vmath.Zero
	}
	return c.Scale(1 / m)
}

// Valid reports whether every active body has finite state and positive mass.
func (s *Simulation) Valid() bool {
	for _, b := range s.bodies {
		if b.Active && !b.valid() {
			return false
		}
	}
	return true
}

// Extent returns the largest distance of an active body's edge from the origin.
func (s *Simulation) Extent() float64 {
	e := 0.0
	for _, b := range s.bodies {
		if b.Active {
			e = math.Max(e, b.Pos.Len()+b.Radius)
		}
	}
	return e
}
