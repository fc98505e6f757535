// Package cloth implements a 2D mass-spring lattice and the fixed-timestep
// integrator that advances it.
//
// The package is organised as an arena of particles plus an ordered list of
// structural springs that reference particles by integer id:
//
//   - [ParticleStore]: positions, previous positions, mass, force accumulator
//   - [SpringStore]: structural constraints and a per-particle degree index
//   - [CreateLattice]: builds the rectangular grid with row 0 pinned
//   - [WindField]: a moving rectangular force zone
//   - [Step]: gravity, wind, damped Verlet integration and relaxation
//   - [ApplyImpulse], [CutNearest], [Reset]: interaction operations
//
// # Example
//
//	ps, ss, _ := cloth.CreateLattice(30, 20, 20, 1)
//	p := cloth.DefaultParams()
//	for i := 0; i < 60; i++ {
//	    cloth.Step(ps, ss, nil, p)
//	}
//
// # Thread Safety
//
// Stores are NOT thread-safe. A tick must run to completion before positions
// are read or interaction operations are applied; sim.Simulator serialises
// these for concurrent callers.
package cloth
