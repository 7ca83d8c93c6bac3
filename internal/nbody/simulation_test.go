package nbody

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/vmath"
)

func expectRadiusLaw(bodies []Body) {
	for _, b := range bodies {
		ExpectWithOffset(1, b.Radius).To(BeNumerically("~", math.Cbrt(b.Mass), 1e-12),
			"body %d radius", b.Index)
	}
}

var _ = Describe("Simulation", func() {
	Describe("Update", func() {
		It("is a no-op on an empty system", func() {
			s := New(nil, 0)
			Expect(func() { s.Update(0.1) }).NotTo(Panic())
			Expect(s.Bodies()).To(BeEmpty())
			Expect(s.ActiveCount()).To(Equal(0))
			Expect(s.Time()).To(BeNumerically("~", 0.1, 1e-15))
		})

		It("moves a lone body in a straight line", func() {
			b := NewBody(0, 8, vmath.Vec2{X: 1, Y: 2}, vmath.Vec2{X: 4, Y: -8})
			s := New([]Body{b}, 0)

			for i := 0; i < 10; i++ {
				s.Update(0.5)
			}

			got := s.Bodies()[0]
			Expect(got.Pos.X).To(BeNumerically("~", 1+10*4*0.5/8, 1e-12))
			Expect(got.Pos.Y).To(BeNumerically("~", 2-10*8*0.5/8, 1e-12))
			Expect(got.Mom).To(Equal(b.Mom))
		})

		It("pulls two distant bodies together with inverse-square force", func() {
			m1, m2 := 10.0, 20.0
			r := 1000.0
			dt := 1.0
			s := New([]Body{
				NewBody(0, m1, vmath.Vec2{X: -r / 2}, vmath.Zero),
				NewBody(1, m2, vmath.Vec2{X: r / 2}, vmath.Zero),
			}, 0)

			s.Update(dt)

			want := G * m1 * m2 / (r * r) * dt
			bodies := s.Bodies()
			Expect(bodies).To(HaveLen(2))
			Expect(bodies[0].Mom.X).To(BeNumerically("~", want, 1e-15))
			Expect(bodies[0].Mom.Y).To(BeNumerically("~", 0, 1e-15))
			Expect(bodies[1].Mom.X).To(BeNumerically("~", -want, 1e-15))
			Expect(s.Merges()).To(Equal(0))
		})

		It("conserves momentum when no bodies touch", func() {
			s := New([]Body{
				NewBody(0, 30, vmath.Vec2{X: 0, Y: 0}, vmath.Vec2{X: 1, Y: 2}),
				NewBody(1, 45, vmath.Vec2{X: 120, Y: 10}, vmath.Vec2{X: -3, Y: 0.5}),
				NewBody(2, 12, vmath.Vec2{X: -80, Y: 95}, vmath.Vec2{X: 0, Y: -4}),
				NewBody(3, 70, vmath.Vec2{X: 40, Y: -150}, vmath.Vec2{X: 2.5, Y: 2.5}),
				NewBody(4, 25, vmath.Vec2{X: -200, Y: -60}, vmath.Vec2{X: 0.1, Y: 7}),
			}, 0)
			before := s.Momentum()

			for i := 0; i < 20; i++ {
				s.Update(0.05)
			}

			Expect(s.Merges()).To(Equal(0))
			after := s.Momentum()
			Expect(after.X).To(BeNumerically("~", before.X, 1e-9))
			Expect(after.Y).To(BeNumerically("~", before.Y, 1e-9))
		})

		It("keeps the trajectory deterministic for a fixed seed", func() {
			cfg := DefaultInitConfig()
			cfg.Bodies = 20

			a, err := FromConfig(cfg, 10)
			Expect(err).NotTo(HaveOccurred())
			b, err := FromConfig(cfg, 10)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 200; i++ {
				a.Update(0.01)
				b.Update(0.01)
			}

			Expect(a.All()).To(Equal(b.All()))
			Expect(a.Merges()).To(Equal(b.Merges()))
		})
	})

	Describe("merging", func() {
		It("merges two identical bodies just inside contact", func() {
			m := 27.0
			rad := RadiusFor(m)
			eps := 1e-6
			s := New([]Body{
				NewBody(0, m, vmath.Vec2{X: 0}, vmath.Vec2{X: 1}),
				NewBody(1, m, vmath.Vec2{X: 2*rad - eps}, vmath.Vec2{X: 1}),
			}, 0)

			s.Update(0.001)

			Expect(s.ActiveCount()).To(Equal(1))
			survivor := s.Bodies()[0]
			Expect(survivor.Index).To(Equal(0), "equal mass: lower index absorbs")
			Expect(survivor.Mass).To(Equal(2 * m))
			Expect(survivor.Mom.X).To(BeNumerically("~", 2, 1e-12))
			Expect(survivor.Radius).To(BeNumerically("~", math.Cbrt(2*m), 1e-12))
			Expect(s.Merges()).To(Equal(1))
		})

		It("lets the heavier body absorb the lighter one in place", func() {
			s := New([]Body{
				NewBody(0, 20, vmath.Vec2{X: 0, Y: 0}, vmath.Zero),
				NewBody(1, 50, vmath.Vec2{X: 1, Y: 1}, vmath.Zero),
			}, 0)

			s.Update(0)

			Expect(s.ActiveCount()).To(Equal(1))
			survivor := s.Bodies()[0]
			Expect(survivor.Index).To(Equal(1))
			Expect(survivor.Mass).To(Equal(70.0))
			Expect(survivor.Pos).To(Equal(vmath.Vec2{X: 1, Y: 1}))

			all := s.All()
			Expect(all).To(HaveLen(2))
			Expect(all[0].Active).To(BeFalse())
		})

		It("lets the absorber carry the merged body's pull exactly once", func() {
			s := New([]Body{
				NewBody(0, 5, vmath.Vec2{X: -10}, vmath.Zero),
				NewBody(1, 1, vmath.Zero, vmath.Zero),
				NewBody(2, 20, vmath.Zero, vmath.Zero),
			}, 0)

			s.Update(1)

			Expect(s.ActiveCount()).To(Equal(2))
			far, merged := s.Bodies()[0], s.Bodies()[1]
			Expect(merged.Index).To(Equal(2))
			Expect(merged.Mass).To(Equal(21.0))

			// G * 5 * 21 / 10^2 on each side
			Expect(far.Mom.X).To(BeNumerically("~", 1.05, 1e-12))
			Expect(merged.Mom.X).To(BeNumerically("~", -1.05, 1e-12))
			Expect(s.Momentum().Len()).To(BeNumerically("<", 1e-12))
		})

		It("re-reads bodies merged earlier in the same pass", func() {
			s := New([]Body{
				NewBody(0, 10, vmath.Vec2{X: 0}, vmath.Zero),
				NewBody(1, 20, vmath.Vec2{X: 3}, vmath.Zero),
				NewBody(2, 30, vmath.Vec2{X: 7}, vmath.Zero),
			}, 0)

			var merges []Merge
			s.OnMerge = func(m Merge) { merges = append(merges, m) }

			s.Update(0.01)

			Expect(s.ActiveCount()).To(Equal(1))
			survivor := s.Bodies()[0]
			Expect(survivor.Index).To(Equal(1))
			Expect(survivor.Mass).To(Equal(60.0))
			Expect(merges).To(Equal([]Merge{
				{Time: 0, Absorber: 1, Absorbed: 0, Mass: 30},
				{Time: 0, Absorber: 1, Absorbed: 2, Mass: 60},
			}))
		})

		It("conserves mass and momentum across merges", func() {
			cfg := DefaultInitConfig()
			cfg.Bodies = 40
			cfg.MaxPos = 15

			s, err := FromConfig(cfg, 4)
			Expect(err).NotTo(HaveOccurred())
			expectRadiusLaw(s.Bodies())

			mass, mom := s.TotalMass(), s.Momentum()
			scale := 0.0
			for _, b := range s.Bodies() {
				scale += b.Mom.Len()
			}
			tol := 1e-12 * (1 + scale)

			// dt = 0 isolates the merges from the forces
			s.Update(0)

			Expect(s.Merges()).To(BeNumerically(">", 0))
			Expect(s.ActiveCount()).To(Equal(cfg.Bodies - s.Merges()))
			Expect(s.TotalMass()).To(BeNumerically("~", mass, 1e-9))
			Expect(s.Momentum().X).To(BeNumerically("~", mom.X, tol))
			Expect(s.Momentum().Y).To(BeNumerically("~", mom.Y, tol))
			expectRadiusLaw(s.Bodies())
		})

		It("never reactivates absorbed bodies", func() {
			cfg := DefaultInitConfig()
			cfg.Bodies = 30
			cfg.MaxPos = 40

			s, err := FromConfig(cfg, 11)
			Expect(err).NotTo(HaveOccurred())

			dead := map[int]bool{}
			for step := 0; step < 300; step++ {
				s.Update(0.01)
				for _, b := range s.All() {
					if dead[b.Index] {
						Expect(b.Active).To(BeFalse(), "body %d came back", b.Index)
					}
					if !b.Active {
						dead[b.Index] = true
					}
				}
			}
			Expect(s.Len()).To(Equal(cfg.Bodies))
			Expect(len(dead)).To(Equal(s.Merges()))
		})
	})

	Describe("Step", func() {
		It("rejects non-finite timesteps", func() {
			s := New([]Body{NewBody(0, 1, vmath.Zero, vmath.Zero)}, 0)
			Expect(s.Step(math.NaN())).To(MatchError(ErrInvalidTimestep))
			Expect(s.Step(math.Inf(1))).To(MatchError(ErrInvalidTimestep))
			Expect(s.Time()).To(Equal(0.0))
			Expect(s.Step(0.1)).To(Succeed())
		})
	})

	Describe("diagnostics", func() {
		It("reports energy, angular momentum and center of mass", func() {
			s := New([]Body{
				NewBody(0, 2, vmath.Vec2{X: 10}, vmath.Vec2{Y: 4}),
				NewBody(1, 6, vmath.Vec2{X: -10}, vmath.Vec2{Y: -2}),
			}, 0)

			Expect(s.TotalMass()).To(Equal(8.0))
			Expect(s.Momentum()).To(Equal(vmath.Vec2{X: 0, Y: 2}))
			Expect(s.AngularMomentum()).To(BeNumerically("~", 10*4+(-10)*(-2), 1e-12))
			Expect(s.KineticEnergy()).To(BeNumerically("~", 16.0/4+4.0/12, 1e-12))
			Expect(s.PotentialEnergy()).To(BeNumerically("~", -G*2*6/20.0, 1e-12))
			Expect(s.CenterOfMass().X).To(BeNumerically("~", (20.0-60.0)/8, 1e-12))
			Expect(s.Valid()).To(BeTrue())
		})

		It("flags non-finite state", func() {
			s := New([]Body{NewBody(0, 1, vmath.Vec2{X: math.NaN()}, vmath.Zero)}, 0)
			Expect(s.Valid()).To(BeFalse())
		})
	})
})
