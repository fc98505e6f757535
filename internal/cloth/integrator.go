package cloth

// Step advances the lattice by one tick of p.Dt split into p.Substeps
// substeps. Each substep runs, in order: gravity, wind (if enabled), damped
// Verlet integration, then p.RelaxIters relaxation passes over all springs.
//
// A tick always runs to completion. wind may be nil.
func Step(ps *ParticleStore, ss *SpringStore, wind *WindField, p Params) {
	precondition(p.Substeps > 0, "substeps must be positive, got %d", p.Substeps)

	windOn := p.EnableWind && wind != nil
	if windOn {
		wind.Advance(p.Dt)
	}

	h := p.SubstepDt()
	h2 := h * h

	for range p.Substeps {
		applyGravity(ps, p.Gravity)
		if windOn {
			wind.Apply(ps)
		}
		integrate(ps, p.DampenFactor, h2)
		for range p.RelaxIters {
			relax(ps, ss, p.RestLength, p.Stiffness, h2)
		}
	}
}

// applyGravity adds (0, -g)*m to every unpinned particle's accumulator.
func applyGravity(ps *ParticleStore, g float64) {
	parallelFor(len(ps.particles), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps.particles[i]
			if p.Pinned {
				continue
			}
			p.Force.Y -= g * p.Mass
		}
	})
}

// integrate is the damped Verlet update:
//
//	next = pos + damp*(pos - prev) + force/m * h²
//
// The accumulator is cleared for every particle afterwards.
func integrate(ps *ParticleStore, damp, h2 float64) {
	parallelFor(len(ps.particles), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps.particles[i]
			if !p.Pinned {
				next := p.Pos.
					Add(p.Pos.Sub(p.Prev).Scale(damp)).
					Add(p.Force.Scale(h2 / p.Mass))
				p.Prev = p.Pos
				p.Pos = next
			}
			p.Force = Vec2{}
		}
	})
}

// relax moves spring endpoints toward rest length by direct position
// correction. Springs are visited sequentially and each sees the corrections
// of the ones before it. Prev is left untouched.
func relax(ps *ParticleStore, ss *SpringStore, r0, k0, h2 float64) {
	for _, sp := range ss.springs {
		a, b := ps.Pair(sp.A, sp.B)

		diff := a.Pos.Sub(b.Pos)
		dist := diff.Len()
		if dist == 0 {
			continue
		}

		tension := r0 - dist
		f := -(k0 * tension)
		dir := diff.Scale(1 / dist)

		if !a.Pinned {
			a.Pos = a.Pos.Add(dir.Scale(-0.5 * f / a.Mass * h2))
		}
		if !b.Pinned {
			b.Pos = b.Pos.Add(dir.Scale(0.5 * f / b.Mass * h2))
		}
	}
}
