package nbody

import "errors"

// Domain errors for the simulation core.
var (
	// ErrInvalidConfig indicates initial-condition parameters that cannot be sampled.
	ErrInvalidConfig = errors.New("nbody: invalid configuration")

	// ErrDegenerateSample indicates sampling produced a value the physics cannot use.
	ErrDegenerateSample = errors.New("nbody: degenerate sample")

	// ErrInvalidState indicates a body with NaN or Inf position, momentum or mass.
	ErrInvalidState = errors.New("nbody: invalid state (NaN or Inf detected)")

	// ErrInvalidTimestep indicates a non-finite timestep.
	ErrInvalidTimestep = errors.New("nbody: invalid timestep")
)
