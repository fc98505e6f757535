package cloth

import "iter"

// GridIndex is a particle's lattice coordinate.
type GridIndex struct {
	X, Y int
}

// Particle is a point mass in Verlet form: velocity is implied by Pos - Prev.
type Particle struct {
	Pos    Vec2
	Prev   Vec2
	Force  Vec2
	Mass   float64
	Pinned bool
	Index  GridIndex
}

// ParticleStore is an arena of particles addressed by integer id.
// Ids are dense and stable; particles are never removed.
type ParticleStore struct {
	particles []Particle
}

func NewParticleStore(capacity int) *ParticleStore {
	return &ParticleStore{particles: make([]Particle, 0, capacity)}
}

// Add appends p and returns its id. Panics if p.Mass is not positive.
func (s *ParticleStore) Add(p Particle) int {
	precondition(p.Mass > 0, "particle mass must be positive, got %v", p.Mass)
	s.particles = append(s.particles, p)
	return len(s.particles) - 1
}

func (s *ParticleStore) Len() int { return len(s.particles) }

// At returns a pointer into the arena. The pointer is valid until the next Add.
func (s *ParticleStore) At(id int) *Particle {
	precondition(id >= 0 && id < len(s.particles), "particle id %d out of range [0, %d)", id, len(s.particles))
	return &s.particles[id]
}

// Pair returns two distinct particles for simultaneous mutation.
// Panics if a == b: a spring joining a particle to itself would alias.
func (s *ParticleStore) Pair(a, b int) (*Particle, *Particle) {
	precondition(a != b, "spring endpoints alias particle %d", a)
	return s.At(a), s.At(b)
}

// Positions yields (id, position) for every particle in id order.
func (s *ParticleStore) Positions() iter.Seq2[int, Vec2] {
	return func(yield func(int, Vec2) bool) {
		for i := range s.particles {
			if !yield(i, s.particles[i].Pos) {
				return
			}
		}
	}
}

// Snapshot copies all positions into dst, growing it as needed.
func (s *ParticleStore) Snapshot(dst []Vec2) []Vec2 {
	dst = dst[:0]
	for i := range s.particles {
		dst = append(dst, s.particles[i].Pos)
	}
	return dst
}

// CheckFinite returns a *ParticleError wrapping ErrNonFinite for the first
// particle whose position is NaN or Inf.
func (s *ParticleStore) CheckFinite() error {
	for i := range s.particles {
		if !s.particles[i].Pos.IsFinite() {
			return &ParticleError{ID: i, Pos: s.particles[i].Pos, Wrapped: ErrNonFinite}
		}
	}
	return nil
}
