package cloth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

var _ = Describe("Interaction", func() {
	var (
		ps  *cloth.ParticleStore
		ss  *cloth.SpringStore
		lat *cloth.Lattice
		p   cloth.Params
	)

	BeforeEach(func() {
		p = cloth.DefaultParams()
		p.RestLength = 20
		ps, ss, lat = cloth.CreateLattice(5, 5, p.RestLength, 1)
	})

	Describe("ApplyImpulse", func() {
		It("adds force to unpinned particles in range only", func() {
			target := lat.ID(2, 2)
			n := cloth.ApplyImpulse(ps, ps.At(target).Pos, 1, cloth.V(8000, 0))

			Expect(n).To(Equal(1))
			Expect(ps.At(target).Force).To(Equal(cloth.V(8000, 0)))
			Expect(ps.At(lat.ID(2, 1)).Force).To(Equal(cloth.Vec2{}))
		})

		It("skips pinned particles", func() {
			n := cloth.ApplyImpulse(ps, ps.At(lat.ID(0, 0)).Pos, 1, cloth.V(8000, 0))
			Expect(n).To(Equal(0))
			Expect(ps.At(lat.ID(0, 0)).Force).To(Equal(cloth.Vec2{}))
		})

		It("reports zero when nothing is in range", func() {
			Expect(cloth.ApplyImpulse(ps, cloth.V(1e6, 1e6), 150, cloth.V(1, 0))).To(Equal(0))
		})

		It("accumulates across calls and pushes particles on the next step", func() {
			target := lat.ID(4, 4)
			start := ps.At(target).Pos
			cloth.ApplyImpulse(ps, start, 1, cloth.V(8000, 0))
			cloth.ApplyImpulse(ps, start, 1, cloth.V(8000, 0))
			Expect(ps.At(target).Force.X).To(Equal(16000.0))

			p.Gravity = 0
			cloth.Step(ps, ss, nil, p)
			Expect(ps.At(target).Pos.X).To(BeNumerically(">", start.X))
		})
	})

	Describe("CutNearest", func() {
		It("leaves springs alone when the point is far away", func() {
			before := ss.Len()
			Expect(cloth.CutNearest(ps, ss, cloth.V(1e6, 1e6), p.RestLength)).To(BeFalse())
			Expect(ss.Len()).To(Equal(before))
		})

		It("removes exactly one spring per call", func() {
			before := ss.Len()
			Expect(cloth.CutNearest(ps, ss, ps.At(lat.ID(2, 2)).Pos, p.RestLength)).To(BeTrue())
			Expect(ss.Len()).To(Equal(before - 1))
		})

		It("removes the only spring near the point", func() {
			ps, ss, _ := cloth.CreateLattice(2, 1, 10, 1)
			Expect(ss.Len()).To(Equal(1))
			Expect(cloth.CutNearest(ps, ss, cloth.V(-5, 0), 10)).To(BeTrue())
			Expect(ss.Len()).To(Equal(0))
			Expect(ss.Degree(0)).To(Equal(0))
			Expect(ss.Degree(1)).To(Equal(0))
		})

		It("removes the first matching spring in store order", func() {
			first := ss.At(0)
			Expect(cloth.CutNearest(ps, ss, ps.At(first.A).Pos, 0)).To(BeTrue())
			Expect(ss.Springs()).NotTo(ContainElement(first))
		})

		It("keeps the lattice stepping after cuts", func() {
			for range 10 {
				cloth.CutNearest(ps, ss, ps.At(lat.ID(2, 3)).Pos, p.RestLength)
			}
			for range 30 {
				cloth.Step(ps, ss, nil, p)
			}
			Expect(ps.CheckFinite()).To(Succeed())
		})
	})

	Describe("Reset", func() {
		It("reproduces the construction positions", func() {
			initial := ps.Snapshot(nil)
			cloth.ApplyImpulse(ps, ps.At(lat.ID(3, 3)).Pos, 50, p.MouseForce)
			for range 20 {
				cloth.Step(ps, ss, nil, p)
			}

			cloth.Reset(ps, p)
			for id, pos := range ps.Positions() {
				Expect(pos).To(Equal(initial[id]))
				Expect(ps.At(id).Prev).To(Equal(initial[id]))
				Expect(ps.At(id).Force).To(Equal(cloth.Vec2{}))
			}
		})

		It("is idempotent", func() {
			for range 20 {
				cloth.Step(ps, ss, nil, p)
			}
			cloth.Reset(ps, p)
			once := ps.Snapshot(nil)
			cloth.Reset(ps, p)
			Expect(ps.Snapshot(nil)).To(Equal(once))
		})

		It("does not restore cut springs", func() {
			cloth.CutNearest(ps, ss, ps.At(lat.ID(1, 1)).Pos, p.RestLength)
			cut := ss.Len()
			cloth.Reset(ps, p)
			Expect(ss.Len()).To(Equal(cut))
		})

		It("uses the current rest length", func() {
			p.RestLength = 30
			cloth.Reset(ps, p)
			Expect(ps.At(lat.ID(2, 1)).Pos).To(Equal(cloth.V(60, -30)))
		})
	})
})
