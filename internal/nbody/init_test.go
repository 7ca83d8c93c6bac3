package nbody

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/rng"
	"github.com/san-kum/gravsim/internal/vmath"
)

var _ = Describe("Initialize", func() {
	DescribeTable("assigns sequential indices and valid bodies",
		func(policy Policy) {
			cfg := DefaultInitConfig()
			cfg.Policy = policy

			bodies, err := Initialize(cfg, rng.New(10))
			Expect(err).NotTo(HaveOccurred())
			Expect(bodies).To(HaveLen(cfg.Bodies))

			for i, b := range bodies {
				Expect(b.Index).To(Equal(i))
				Expect(b.Active).To(BeTrue())
				Expect(b.Mass).To(BeNumerically(">=", cfg.MinMass))
				Expect(b.Mass).To(BeNumerically("<=", cfg.MaxMass))
				Expect(b.valid()).To(BeTrue())
			}
			expectRadiusLaw(bodies)
		},
		Entry("basic", PolicyBasic),
		Entry("polar", PolicyPolar),
		Entry("angular", PolicyAngular),
	)

	It("is deterministic for a fixed seed", func() {
		for _, policy := range Policies {
			cfg := DefaultInitConfig()
			cfg.Policy = policy

			a, err := Initialize(cfg, rng.New(99))
			Expect(err).NotTo(HaveOccurred())
			b, err := Initialize(cfg, rng.New(99))
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b), "policy %s", policy)

			c, err := Initialize(cfg, rng.New(100))
			Expect(err).NotTo(HaveOccurred())
			Expect(c).NotTo(Equal(a), "policy %s", policy)
		}
	})

	It("produces an empty set for zero bodies", func() {
		cfg := DefaultInitConfig()
		cfg.Bodies = 0

		bodies, err := Initialize(cfg, rng.New(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(bodies).To(BeEmpty())
	})

	It("keeps polar positions inside the configured radius", func() {
		cfg := DefaultInitConfig()
		cfg.Policy = PolicyPolar
		cfg.Bodies = 500

		bodies, err := Initialize(cfg, rng.New(5))
		Expect(err).NotTo(HaveOccurred())
		for _, b := range bodies {
			Expect(b.Pos.Len()).To(BeNumerically("<=", cfg.MaxPos+1e-9))
			Expect(b.Pos.Len()).To(BeNumerically(">", 0))
		}
	})

	It("keeps basic momenta inside the configured box", func() {
		cfg := DefaultInitConfig()
		cfg.Policy = PolicyBasic
		cfg.Bodies = 500

		bodies, err := Initialize(cfg, rng.New(6))
		Expect(err).NotTo(HaveOccurred())
		for _, b := range bodies {
			Expect(math.Abs(b.Mom.X)).To(BeNumerically("<=", cfg.MaxMom))
			Expect(math.Abs(b.Mom.Y)).To(BeNumerically("<=", cfg.MaxMom))
		}
	})

	DescribeTable("rejects bad configuration",
		func(mutate func(*InitConfig)) {
			cfg := DefaultInitConfig()
			mutate(&cfg)

			bodies, err := Initialize(cfg, rng.New(1))
			Expect(err).To(MatchError(ErrInvalidConfig))
			Expect(bodies).To(BeNil())
		},
		Entry("negative count", func(c *InitConfig) { c.Bodies = -1 }),
		Entry("zero min mass", func(c *InitConfig) { c.MinMass = 0 }),
		Entry("min above max", func(c *InitConfig) { c.MinMass, c.MaxMass = 200, 100 }),
		Entry("negative max position", func(c *InitConfig) { c.MaxPos = -1 }),
		Entry("zero polar radius", func(c *InitConfig) { c.Policy, c.MaxPos = PolicyPolar, 0 }),
		Entry("zero angular radius", func(c *InitConfig) { c.MaxPos = 0 }),
		Entry("negative max momentum", func(c *InitConfig) { c.MaxMom = -5 }),
		Entry("negative std dev", func(c *InitConfig) { c.AngMomStdDev = -1 }),
		Entry("nan mass", func(c *InitConfig) { c.MaxMass = math.NaN() }),
		Entry("unknown policy", func(c *InitConfig) { c.Policy = "spiral" }),
	)

	It("allows a zero radius for the basic policy", func() {
		cfg := DefaultInitConfig()
		cfg.Policy = PolicyBasic
		cfg.MaxPos = 0

		bodies, err := Initialize(cfg, rng.New(1))
		Expect(err).NotTo(HaveOccurred())
		for _, b := range bodies {
			Expect(b.Pos).To(Equal(vmath.Zero))
		}
	})

	Describe("angular momentum targeting", func() {
		It("gives every body the target when the spread is zero", func() {
			cfg := DefaultInitConfig()
			cfg.AngMomStdDev = 0
			cfg.Bodies = 200

			bodies, err := Initialize(cfg, rng.New(12))
			Expect(err).NotTo(HaveOccurred())
			for _, b := range bodies {
				// momentum angle = radial angle - θ, so r × p = -L
				Expect(b.Pos.Cross(b.Mom)).To(BeNumerically("~", -cfg.AngMomMean, 1e-9))
			}
		})

		It("exceeds the momentum ceiling when the target requires it", func() {
			cfg := DefaultInitConfig()
			cfg.AngMomStdDev = 0
			cfg.MaxMom = 0.5

			bodies, err := Initialize(cfg, rng.New(13))
			Expect(err).NotTo(HaveOccurred())
			for _, b := range bodies {
				r := b.Pos.Len()
				Expect(b.Mom.Len()).To(BeNumerically("~", cfg.AngMomMean/r, 1e-9))
				// asin is steep at ±1, so a one-ulp ratio moves θ by ~1e-8
				Expect(b.Pos.Dot(b.Mom)).To(BeNumerically("~", 0, 1e-4), "tangential momentum")
			}
		})

		DescribeTable("matches the target for representative inputs",
			func(r, thetaR, l, p float64) {
				mom := angularMomentum(r, thetaR, l, p)
				pos := vmath.FromPolar(r, thetaR)

				Expect(mom.IsFinite()).To(BeTrue())
				Expect(mom.Len()).To(BeNumerically("~", p, 1e-9))
				offset := thetaR - mom.Angle()
				Expect(r * p * math.Sin(offset)).To(BeNumerically("~", l, 1e-9))
				Expect(pos.Cross(mom)).To(BeNumerically("~", -l, 1e-9))
			},
			Entry("typical orbit", 50.0, 0.3, 200.0, 10.0),
			Entry("retrograde", 80.0, 2.0, -150.0, 25.0),
			Entry("tangential minimum", 10.0, -1.2, 200.0, 20.0),
			Entry("zero target", 30.0, 4.0, 0.0, 12.0),
			Entry("near origin", 0.01, 1.0, 0.3, 35.0),
		)

		It("returns a zero momentum for a zero target and zero magnitude", func() {
			mom := angularMomentum(10, 1, 0, 0)
			Expect(mom.IsFinite()).To(BeTrue())
			Expect(mom.Len()).To(BeNumerically("~", 0, 1e-15))
		})

		It("clamps rounding past the asin domain", func() {
			// p sits one ulp below |l|/r
			r, l := 3.0, 10.0
			p := math.Nextafter(l/r, 0)
			mom := angularMomentum(r, 0.5, l, p)
			Expect(mom.IsFinite()).To(BeTrue())
		})
	})
})
