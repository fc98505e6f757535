package cloth

// ApplyImpulse adds force to the accumulator of every unpinned particle
// strictly closer than radius to point. It returns the number of particles
// affected; zero means nothing was in range.
func ApplyImpulse(ps *ParticleStore, point Vec2, radius float64, force Vec2) int {
	n := 0
	for i := range ps.particles {
		p := &ps.particles[i]
		if p.Pinned || p.Pos.Dist(point) >= radius {
			continue
		}
		p.Force = p.Force.Add(force)
		n++
	}
	return n
}

// CutNearest removes the first spring, in store order, with an endpoint within
// threshold of point. At most one spring is removed per call.
func CutNearest(ps *ParticleStore, ss *SpringStore, point Vec2, threshold float64) bool {
	for i, sp := range ss.springs {
		if ps.At(sp.A).Pos.Dist(point) <= threshold || ps.At(sp.B).Pos.Dist(point) <= threshold {
			ss.Remove(i)
			return true
		}
	}
	return false
}

// Reset returns every particle to its rest position for the current rest
// length and discards velocity and accumulated force. Springs are unchanged:
// cut springs stay cut.
func Reset(ps *ParticleStore, p Params) {
	for i := range ps.particles {
		pt := &ps.particles[i]
		pt.Pos = RestPosition(pt.Index, p.RestLength)
		pt.Prev = pt.Pos
		pt.Force = Vec2{}
	}
}
