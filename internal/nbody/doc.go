// Package nbody is the physics core of gravsim: a 2D gravitational N-body
// system whose bodies merge on contact.
//
// The package defines:
//
//   - [Body]: a disc of mass with position and momentum
//   - [Initialize]: randomized initial conditions under one of three [Policy] values
//   - [Simulation]: owns the body set and advances it with [Simulation.Update]
//
// # Stepping
//
// Update performs one semi-implicit Euler step. Positions advance first using
// the momenta carried over from the previous step, then the pairwise
// inverse-square forces are summed and applied to the momenta. Bodies whose
// discs overlap are merged instead of attracting: the heavier one absorbs the
// lighter, and on equal mass the lower index absorbs.
//
// Absorbed bodies are flagged inactive and stay in place, so indices remain
// valid for the lifetime of a simulation.
//
// # Example
//
//	s, err := nbody.FromConfig(nbody.DefaultInitConfig(), 10)
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < 1000; i++ {
//	    s.Update(0.01)
//	}
//	for _, b := range s.Bodies() {
//	    fmt.Println(b.Index, b.Mass, b.Pos)
//	}
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe. Callers read [Simulation.Bodies]
// between Update calls, never during one.
package nbody
