package cloth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

var _ = Describe("WindField", func() {
	rect := cloth.Rect{Min: cloth.V(0, -1000), Max: cloth.V(100, 0)}

	Describe("Advance", func() {
		It("translates along x by force.x*dt", func() {
			w := cloth.NewWindField(rect, cloth.V(60, 300), 1000)
			w.Advance(0.5)
			Expect(w.Rect.Min).To(Equal(cloth.V(30, -1000)))
			Expect(w.Rect.Max).To(Equal(cloth.V(130, 0)))
			Expect(w.Time()).To(Equal(0.5))
		})

		It("wraps once the leading edge passes the width", func() {
			w := cloth.NewWindField(rect, cloth.V(100, 0), 150)
			w.Advance(1)
			Expect(w.Rect.Max.X).To(Equal(50.0))
			Expect(w.Rect.Min.X).To(Equal(-50.0))
		})

		It("wraps leftward moving zones at zero", func() {
			w := cloth.NewWindField(rect, cloth.V(-10, 0), 500)
			w.Advance(1)
			Expect(w.Rect.Min.X).To(Equal(490.0))
		})
	})

	Describe("Apply", func() {
		It("pushes unpinned particles inside the zone, edges inclusive", func() {
			ps := cloth.NewParticleStore(4)
			inside := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(50, -10)})
			edge := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(100, 0)})
			outside := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(150, -10)})
			pinned := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(10, 0), Pinned: true})

			w := cloth.NewWindField(rect, cloth.V(1000, 300), 1000)
			Expect(w.Apply(ps)).To(Equal(2))

			Expect(ps.At(inside).Force).To(Equal(cloth.V(1000, 300)))
			Expect(ps.At(edge).Force).To(Equal(cloth.V(1000, 300)))
			Expect(ps.At(outside).Force).To(Equal(cloth.Vec2{}))
			Expect(ps.At(pinned).Force).To(Equal(cloth.Vec2{}))
		})

		It("keeps a constant force when gust is zero", func() {
			w := cloth.NewWindField(rect, cloth.V(5, 7), 1000).WithGust(0, 42)
			w.Advance(3)
			Expect(w.Current()).To(Equal(cloth.V(5, 7)))
		})

		It("modulates the force with gusts", func() {
			w := cloth.NewWindField(rect, cloth.V(100, 0), 1000).WithGust(0.8, 7)
			seen := make(map[float64]bool)
			for range 20 {
				w.Advance(0.37)
				seen[w.Current().X] = true
			}
			Expect(len(seen)).To(BeNumerically(">", 1))
		})
	})

	Describe("inside Step", func() {
		It("is not run when disabled", func() {
			ps, ss, _ := cloth.CreateLattice(4, 4, 20, 1)
			w := cloth.NewWindField(cloth.Rect{Min: cloth.V(-1000, -1000), Max: cloth.V(1000, 1000)}, cloth.V(5000, 0), 2000)

			p := cloth.DefaultParams()
			p.Gravity = 0
			p.EnableWind = false

			initial := ps.Snapshot(nil)
			for range 20 {
				cloth.Step(ps, ss, w, p)
			}
			Expect(ps.Snapshot(nil)).To(Equal(initial))
			Expect(w.Time()).To(Equal(0.0))
		})

		It("pushes the cloth along the force when enabled", func() {
			ps, ss, lat := cloth.CreateLattice(4, 4, 20, 1)
			w := cloth.NewWindField(cloth.Rect{Min: cloth.V(-1000, -1000), Max: cloth.V(1000, 1000)}, cloth.V(1, 0), 1e9)

			p := cloth.DefaultParams()
			p.Gravity = 0
			p.EnableWind = true

			bottom := lat.ID(3, 3)
			start := ps.At(bottom).Pos.X
			for range 20 {
				cloth.Step(ps, ss, w, p)
			}
			Expect(ps.At(bottom).Pos.X).To(BeNumerically(">", start))
		})
	})

	It("panics on a non-positive width", func() {
		Expect(func() { cloth.NewWindField(rect, cloth.V(1, 0), 0) }).To(Panic())
	})
})
