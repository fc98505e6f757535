package cloth

import (
	"iter"
	"slices"
)

// Spring is a structural constraint between particles A and B.
// Rest length and stiffness are shared and come from Params.
type Spring struct {
	A, B int
}

// SpringStore keeps springs in insertion order together with a per-particle
// degree index. Both are updated in the same call so that a removed spring is
// never visible through either.
type SpringStore struct {
	springs []Spring
	degree  []int
}

// NewSpringStore creates a store for springs between numParticles particles.
func NewSpringStore(numParticles int) *SpringStore {
	return &SpringStore{degree: make([]int, numParticles)}
}

// Add appends a spring between a and b and returns its position.
// Panics if a == b or either id is unknown.
func (s *SpringStore) Add(a, b int) int {
	n := len(s.degree)
	precondition(a != b, "spring endpoints alias particle %d", a)
	precondition(a >= 0 && a < n && b >= 0 && b < n, "spring (%d, %d) references unknown particle (have %d)", a, b, n)
	s.springs = append(s.springs, Spring{A: a, B: b})
	s.degree[a]++
	s.degree[b]++
	return len(s.springs) - 1
}

func (s *SpringStore) Len() int { return len(s.springs) }

func (s *SpringStore) At(i int) Spring { return s.springs[i] }

// Remove deletes the spring at position i, preserving the order of the rest.
func (s *SpringStore) Remove(i int) Spring {
	sp := s.springs[i]
	s.springs = slices.Delete(s.springs, i, i+1)
	s.degree[sp.A]--
	s.degree[sp.B]--
	return sp
}

// Degree returns the number of springs attached to particle id.
func (s *SpringStore) Degree(id int) int { return s.degree[id] }

// Edges yields (a, b) particle ids for every spring in order.
func (s *SpringStore) Edges() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for _, sp := range s.springs {
			if !yield(sp.A, sp.B) {
				return
			}
		}
	}
}

// Springs returns a copy of the current springs.
func (s *SpringStore) Springs() []Spring {
	return slices.Clone(s.springs)
}
