package cloth

// Lattice maps grid coordinates to particle ids.
type Lattice struct {
	NodesX, NodesY int
	ids            [][]int // [y][x]
}

// ID returns the particle id at grid coordinate (x, y).
func (l *Lattice) ID(x, y int) int {
	return l.ids[y][x]
}

// Width is the horizontal extent of the lattice at rest.
func (l *Lattice) Width(r0 float64) float64 {
	return float64(l.NodesX-1) * r0
}

// RestPosition is the construction position of a lattice node. Rows hang
// toward -y, the direction gravity pulls.
func RestPosition(idx GridIndex, r0 float64) Vec2 {
	return Vec2{X: float64(idx.X) * r0, Y: -float64(idx.Y) * r0}
}

// CreateLattice builds nx*ny particles spaced r0 apart with row 0 pinned, and
// one structural spring to the top and left neighbour of every node.
func CreateLattice(nx, ny int, r0, mass float64) (*ParticleStore, *SpringStore, *Lattice) {
	precondition(nx > 0 && ny > 0, "lattice dimensions must be positive, got %dx%d", nx, ny)
	precondition(r0 > 0, "rest length must be positive, got %v", r0)

	ps := NewParticleStore(nx * ny)
	lat := &Lattice{NodesX: nx, NodesY: ny, ids: make([][]int, ny)}

	for y := 0; y < ny; y++ {
		lat.ids[y] = make([]int, nx)
		for x := 0; x < nx; x++ {
			idx := GridIndex{X: x, Y: y}
			pos := RestPosition(idx, r0)
			lat.ids[y][x] = ps.Add(Particle{
				Pos:    pos,
				Prev:   pos,
				Mass:   mass,
				Pinned: y == 0,
				Index:  idx,
			})
		}
	}

	ss := NewSpringStore(ps.Len())
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if y > 0 {
				ss.Add(lat.ids[y-1][x], lat.ids[y][x])
			}
			if x > 0 {
				ss.Add(lat.ids[y][x-1], lat.ids[y][x])
			}
		}
	}

	return ps, ss, lat
}
