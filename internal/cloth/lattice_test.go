package cloth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

var _ = Describe("CreateLattice", func() {
	It("places nodes on a grid with row 0 pinned", func() {
		ps, _, lat := cloth.CreateLattice(4, 3, 15, 2)

		Expect(ps.Len()).To(Equal(12))
		for y := range lat.NodesY {
			for x := range lat.NodesX {
				p := ps.At(lat.ID(x, y))
				Expect(p.Index).To(Equal(cloth.GridIndex{X: x, Y: y}))
				Expect(p.Pos).To(Equal(cloth.V(float64(x)*15, -float64(y)*15)))
				Expect(p.Prev).To(Equal(p.Pos))
				Expect(p.Mass).To(Equal(2.0))
				Expect(p.Pinned).To(Equal(y == 0))
			}
		}
	})

	It("connects every node to its top and left neighbour", func() {
		ps, ss, lat := cloth.CreateLattice(3, 4, 10, 1)

		Expect(ss.Len()).To(Equal(3*3 + 2*4))

		edges := make(map[[2]int]bool)
		for a, b := range ss.Edges() {
			Expect(a).NotTo(Equal(b))
			edges[[2]int{a, b}] = true
		}
		for y := range lat.NodesY {
			for x := range lat.NodesX {
				if y > 0 {
					Expect(edges).To(HaveKey([2]int{lat.ID(x, y-1), lat.ID(x, y)}))
				}
				if x > 0 {
					Expect(edges).To(HaveKey([2]int{lat.ID(x-1, y), lat.ID(x, y)}))
				}
			}
		}

		// interior nodes carry four springs, corners two
		Expect(ss.Degree(lat.ID(1, 1))).To(Equal(4))
		Expect(ss.Degree(lat.ID(0, 0))).To(Equal(2))
		Expect(ps.Len()).To(Equal(12))
	})

	It("builds a single pinned row when ny is 1", func() {
		ps, ss, _ := cloth.CreateLattice(5, 1, 10, 1)
		Expect(ss.Len()).To(Equal(4))
		for _, pos := range ps.Positions() {
			Expect(pos.Y).To(Equal(0.0))
		}
	})

	DescribeTable("rejects invalid arguments",
		func(nx, ny int, r0, mass float64) {
			Expect(func() { cloth.CreateLattice(nx, ny, r0, mass) }).To(Panic())
		},
		Entry("zero width", 0, 3, 10.0, 1.0),
		Entry("negative height", 3, -1, 10.0, 1.0),
		Entry("zero rest length", 3, 3, 0.0, 1.0),
		Entry("zero mass", 3, 3, 10.0, 0.0),
		Entry("negative mass", 3, 3, 10.0, -1.0),
	)
})

var _ = Describe("RestLengths", func() {
	It("derives shear and flexion from the structural length", func() {
		p := cloth.DefaultParams()
		p.RestLength = 10
		s, sh, fl := p.RestLengths()
		Expect(s).To(Equal(10.0))
		Expect(sh).To(BeNumerically("~", 14.1421356, 1e-6))
		Expect(fl).To(Equal(20.0))
	})
})
