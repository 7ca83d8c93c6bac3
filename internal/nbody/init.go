package nbody

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/rng"
	"github.com/san-kum/gravsim/internal/vmath"
)

// Policy selects how initial conditions are sampled.
type Policy string

const (
	// PolicyBasic scatters bodies normally around the origin with uniform momenta.
	PolicyBasic Policy = "basic"
	// PolicyPolar samples position and momentum in polar form.
	PolicyPolar Policy = "polar"
	// PolicyAngular samples polar positions and shapes each momentum to hit a
	// drawn angular momentum.
	PolicyAngular Policy = "angular"
)

// Policies lists the accepted policy names.
var Policies = []Policy{PolicyBasic, PolicyPolar, PolicyAngular}

const (
	DefaultBodies       = 50
	DefaultMinMass      = 10.0
	DefaultMaxMass      = 100.0
	DefaultMaxPos       = 100.0
	DefaultMaxMom       = 50.0
	DefaultAngMomMean   = 200.0
	DefaultAngMomStdDev = 50.0

	// maxResample bounds redraws of a zero orbital radius.
	maxResample = 64
)

type InitConfig struct {
	Bodies       int
	Policy       Policy
	MinMass      float64
	MaxMass      float64
	MaxPos       float64
	MaxMom       float64
	AngMomMean   float64
	AngMomStdDev float64
}

func DefaultInitConfig() InitConfig {
	return InitConfig{
		Bodies:       DefaultBodies,
		Policy:       PolicyAngular,
		MinMass:      DefaultMinMass,
		MaxMass:      DefaultMaxMass,
		MaxPos:       DefaultMaxPos,
		MaxMom:       DefaultMaxMom,
		AngMomMean:   DefaultAngMomMean,
		AngMomStdDev: DefaultAngMomStdDev,
	}
}

// Validate reports why cfg cannot be sampled, wrapping ErrInvalidConfig.
func (c InitConfig) Validate() error {
	for name, v := range map[string]float64{
		"min mass":       c.MinMass,
		"max mass":       c.MaxMass,
		"max position":   c.MaxPos,
		"max momentum":   c.MaxMom,
		"angmom mean":    c.AngMomMean,
		"angmom std dev": c.AngMomStdDev,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
		}
	}

	switch {
	case c.Bodies < 0:
		return fmt.Errorf("%w: body count must be non-negative, got %d", ErrInvalidConfig, c.Bodies)
	case c.MinMass <= 0:
		return fmt.Errorf("%w: min mass must be positive, got %g", ErrInvalidConfig, c.MinMass)
	case c.MinMass > c.MaxMass:
		return fmt.Errorf("%w: min mass %g exceeds max mass %g", ErrInvalidConfig, c.MinMass, c.MaxMass)
	case c.MaxPos < 0:
		return fmt.Errorf("%w: max position must be non-negative, got %g", ErrInvalidConfig, c.MaxPos)
	case c.MaxMom < 0:
		return fmt.Errorf("%w: max momentum must be non-negative, got %g", ErrInvalidConfig, c.MaxMom)
	}

	switch c.Policy {
	case PolicyBasic:
	case PolicyPolar:
		if c.MaxPos <= 0 {
			return fmt.Errorf("%w: polar sampling needs a positive max position", ErrInvalidConfig)
		}
	case PolicyAngular:
		if c.MaxPos <= 0 {
			return fmt.Errorf("%w: polar sampling needs a positive max position", ErrInvalidConfig)
		}
		if c.AngMomStdDev < 0 {
			return fmt.Errorf("%w: angmom std dev must be non-negative, got %g", ErrInvalidConfig, c.AngMomStdDev)
		}
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, c.Policy)
	}
	return nil
}

// Initialize samples cfg.Bodies bodies from src. Indices run 0..N-1.
func Initialize(cfg InitConfig, src *rng.Source) ([]Body, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bodies := make([]Body, 0, cfg.Bodies)
	for i := 0; i < cfg.Bodies; i++ {
		var (
			b   Body
			err error
		)
		switch cfg.Policy {
		case PolicyBasic:
			b = sampleBasic(i, cfg, src)
		case PolicyPolar:
			b, err = samplePolar(i, cfg, src)
		case PolicyAngular:
			b, err = sampleAngular(i, cfg, src)
		}
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		if !b.valid() {
			return nil, fmt.Errorf("body %d: %w: non-finite state", i, ErrDegenerateSample)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func sampleBasic(i int, cfg InitConfig, src *rng.Source) Body {
	pos := vmath.Vec2{X: src.Normal(0, cfg.MaxPos), Y: src.Normal(0, cfg.MaxPos)}
	mom := vmath.Vec2{X: src.UniformSym(cfg.MaxMom), Y: src.UniformSym(cfg.MaxMom)}
	m := src.Uniform(cfg.MinMass, cfg.MaxMass)
	return NewBody(i, m, pos, mom)
}

// sampleRadius draws a polar position, redrawing an exactly-zero radius.
func sampleRadius(cfg InitConfig, src *rng.Source) (r, theta float64, err error) {
	for try := 0; try < maxResample; try++ {
		r = src.Uniform(0, cfg.MaxPos)
		theta = src.Uniform(0, 2*math.Pi)
		if r > 0 {
			return r, theta, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: zero orbital radius after %d draws", ErrDegenerateSample, maxResample)
}

func samplePolar(i int, cfg InitConfig, src *rng.Source) (Body, error) {
	m := src.Uniform(cfg.MinMass, cfg.MaxMass)

	r, thetaR, err := sampleRadius(cfg, src)
	if err != nil {
		return Body{}, err
	}

	p := math.Abs(src.Normal(0, cfg.MaxMom))
	thetaP := src.Uniform(0, 2*math.Pi)

	return NewBody(i, m, vmath.FromPolar(r, thetaR), vmath.FromPolar(p, thetaP)), nil
}

func sampleAngular(i int, cfg InitConfig, src *rng.Source) (Body, error) {
	m := src.Uniform(cfg.MinMass, cfg.MaxMass)

	r, thetaR, err := sampleRadius(cfg, src)
	if err != nil {
		return Body{}, err
	}

	l := src.Normal(cfg.AngMomMean, cfg.AngMomStdDev)

	// Smallest momentum that can carry |l| at radius r; it may exceed MaxMom.
	pMin := math.Abs(l) / r
	p := pMin
	if pMin <= cfg.MaxMom {
		p = src.Uniform(pMin, cfg.MaxMom)
	}

	return NewBody(i, m, vmath.FromPolar(r, thetaR), angularMomentum(r, thetaR, l, p)), nil
}

// angularMomentum returns the momentum of magnitude p, at radius r and
// radial angle thetaR, whose offset from the radial direction satisfies
// r·p·sin(thetaR - thetaP) = l.
func angularMomentum(r, thetaR, l, p float64) vmath.Vec2 {
	theta := 0.0
	if p > 0 {
		sinTheta := l / (r * p)
		// p >= |l|/r keeps this in range up to rounding
		sinTheta = math.Max(-1, math.Min(1, sinTheta))
		theta = math.Asin(sinTheta)
	}
	return vmath.FromPolar(p, thetaR-theta)
}
