package nbody

import (
	"math"

	"github.com/san-kum/gravsim/internal/vmath"
)

// RadiusConst scales the cube-root mass-radius law.
const RadiusConst = 1.0

type Body struct {
	Index  int
	Mass   float64
	Radius float64
	Pos    vmath.Vec2
	Mom    vmath.Vec2
	Active bool
}

// NewBody returns an active body with its radius derived from mass.
func NewBody(index int, mass float64, pos, mom vmath.Vec2) Body {
	return Body{
		Index:  index,
		Mass:   mass,
		Radius: RadiusFor(mass),
		Pos:    pos,
		Mom:    mom,
		Active: true,
	}
}

func RadiusFor(mass float64) float64 {
	return RadiusConst * math.Cbrt(mass)
}

// Velocity returns Mom / Mass.
func (b Body) Velocity() vmath.Vec2 {
	return b.Mom.Scale(1 / b.Mass)
}

func (b Body) KineticEnergy() float64 {
	return b.Mom.Len2() / (2 * b.Mass)
}

// absorb folds other into b. Position is left where b was.
func (b *Body) absorb(other *Body) {
	b.Mass += other.Mass
	b.Mom = b.Mom.Add(other.Mom)
	b.Radius = RadiusFor(b.Mass)
	other.Active = false
}

func (b Body) valid() bool {
	return b.Pos.IsFinite() && b.Mom.IsFinite() &&
		!math.IsNaN(b.Mass) && !math.IsInf(b.Mass, 0) && b.Mass > 0
}
