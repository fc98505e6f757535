package cloth_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

func freeParams() cloth.Params {
	p := cloth.DefaultParams()
	p.Gravity = 0
	p.Stiffness = 0
	return p
}

var _ = Describe("Step", func() {
	Describe("gravity only", func() {
		It("matches uniformly accelerated motion for an unconstrained particle", func() {
			ps := cloth.NewParticleStore(1)
			id := ps.Add(cloth.Particle{Mass: 2})
			ss := cloth.NewSpringStore(ps.Len())

			p := freeParams()
			p.Gravity = 100
			p.DampenFactor = 1

			const ticks = 60
			for range ticks {
				cloth.Step(ps, ss, nil, p)
			}

			h := p.SubstepDt()
			n := float64(ticks * p.Substeps)
			t := float64(ticks) * p.Dt

			// Verlet starting at rest covers a*h²*n(n+1)/2 after n substeps.
			discrete := -p.Gravity * h * h * n * (n + 1) / 2
			Expect(ps.At(id).Pos.Y).To(BeNumerically("~", discrete, 1e-9*math.Abs(discrete)))
			Expect(ps.At(id).Pos.X).To(Equal(0.0))

			// and converges to 1/2 a t² with an O(h) offset.
			continuous := -0.5 * p.Gravity * t * t
			Expect(ps.At(id).Pos.Y).To(BeNumerically("~", continuous, 0.51*p.Gravity*h*t))
		})

		It("is independent of particle mass", func() {
			ps := cloth.NewParticleStore(2)
			light := ps.Add(cloth.Particle{Mass: 0.5})
			heavy := ps.Add(cloth.Particle{Mass: 50, Pos: cloth.V(10, 0), Prev: cloth.V(10, 0)})
			ss := cloth.NewSpringStore(ps.Len())

			p := freeParams()
			p.Gravity = 9.81
			for range 30 {
				cloth.Step(ps, ss, nil, p)
			}
			Expect(ps.At(light).Pos.Y).To(BeNumerically("~", ps.At(heavy).Pos.Y, 1e-9))
		})
	})

	Describe("pinned particles", func() {
		It("never move, exactly", func() {
			ps, ss, lat := cloth.CreateLattice(6, 5, 20, 1)
			wind := cloth.NewWindField(cloth.Rect{Min: cloth.V(-100, -1000), Max: cloth.V(1000, 100)}, cloth.V(1000, 300), 400)

			p := cloth.DefaultParams()
			p.EnableWind = true

			before := make(map[int]cloth.Particle)
			for x := range lat.NodesX {
				id := lat.ID(x, 0)
				before[id] = *ps.At(id)
			}

			for i := range 120 {
				if i%10 == 0 {
					cloth.ApplyImpulse(ps, cloth.V(50, 0), 200, p.MouseForce)
				}
				cloth.Step(ps, ss, wind, p)
			}

			for id, want := range before {
				got := ps.At(id)
				Expect(got.Pos).To(Equal(want.Pos))
				Expect(got.Prev).To(Equal(want.Prev))
			}
		})
	})

	Describe("rest-length equilibrium", func() {
		It("keeps a spring released at rest length at rest length", func() {
			const r0 = 25.0
			ps := cloth.NewParticleStore(2)
			anchor := ps.Add(cloth.Particle{Mass: 1, Pinned: true})
			bob := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(0, -r0), Prev: cloth.V(0, -r0)})
			ss := cloth.NewSpringStore(ps.Len())
			ss.Add(anchor, bob)

			p := cloth.DefaultParams()
			p.Gravity = 0
			p.RestLength = r0

			for range 300 {
				cloth.Step(ps, ss, nil, p)
				Expect(ps.At(anchor).Pos.Dist(ps.At(bob).Pos)).To(BeNumerically("~", r0, 1e-9))
			}
		})

		It("pulls a stretched spring back toward rest length", func() {
			const r0 = 10.0
			ps := cloth.NewParticleStore(2)
			anchor := ps.Add(cloth.Particle{Mass: 1, Pinned: true})
			bob := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(0, -2*r0), Prev: cloth.V(0, -2*r0)})
			ss := cloth.NewSpringStore(ps.Len())
			ss.Add(anchor, bob)

			p := cloth.DefaultParams()
			p.Gravity = 0
			p.RestLength = r0

			cloth.Step(ps, ss, nil, p)
			Expect(ps.At(bob).Pos.Dist(ps.At(anchor).Pos)).To(BeNumerically("<", 2*r0))
		})

		It("skips coincident endpoints instead of dividing by zero", func() {
			ps := cloth.NewParticleStore(2)
			a := ps.Add(cloth.Particle{Mass: 1})
			b := ps.Add(cloth.Particle{Mass: 1})
			ss := cloth.NewSpringStore(ps.Len())
			ss.Add(a, b)

			p := cloth.DefaultParams()
			p.Gravity = 0
			cloth.Step(ps, ss, nil, p)

			Expect(ps.CheckFinite()).To(Succeed())
			Expect(ps.At(a).Pos).To(Equal(cloth.Vec2{}))
			Expect(ps.At(b).Pos).To(Equal(cloth.Vec2{}))
		})
	})

	Describe("relaxation order", func() {
		It("lets each spring see the corrections of the springs before it", func() {
			// A pinned, B and C hanging below, both springs stretched to 2*r0
			// with no velocity. k0*h² = 0.5, so each endpoint moves a quarter
			// of the stretch: AB lifts B by 2.5 to -17.5. BC then measures
			// 22.5, not 20, and moves both B and C by 3.125.
			ps := cloth.NewParticleStore(3)
			a := ps.Add(cloth.Particle{Mass: 1, Pinned: true})
			b := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(0, -20), Prev: cloth.V(0, -20)})
			c := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(0, -40), Prev: cloth.V(0, -40)})
			ss := cloth.NewSpringStore(ps.Len())
			ss.Add(a, b)
			ss.Add(b, c)

			p := cloth.DefaultParams()
			p.Gravity = 0
			p.RestLength = 10
			p.Stiffness = 50
			p.Dt = 0.1
			p.Substeps = 1
			p.RelaxIters = 1
			cloth.Step(ps, ss, nil, p)

			Expect(ps.At(a).Pos).To(Equal(cloth.V(0, 0)))
			Expect(ps.At(b).Pos.X).To(Equal(0.0))
			Expect(ps.At(b).Pos.Y).To(BeNumerically("~", -20.625, 1e-9))
			Expect(ps.At(c).Pos.X).To(Equal(0.0))
			// a pass over a snapshot would leave C at -37.5
			Expect(ps.At(c).Pos.Y).To(BeNumerically("~", -36.875, 1e-9))
		})
	})

	Describe("heavier endpoints", func() {
		It("move less during relaxation", func() {
			ps := cloth.NewParticleStore(2)
			light := ps.Add(cloth.Particle{Mass: 1, Pos: cloth.V(0, 0), Prev: cloth.V(0, 0)})
			heavy := ps.Add(cloth.Particle{Mass: 4, Pos: cloth.V(30, 0), Prev: cloth.V(30, 0)})
			ss := cloth.NewSpringStore(ps.Len())
			ss.Add(light, heavy)

			p := cloth.DefaultParams()
			p.Gravity = 0
			p.RestLength = 10
			p.Substeps = 1
			p.RelaxIters = 1
			cloth.Step(ps, ss, nil, p)

			dl := ps.At(light).Pos.Dist(cloth.V(0, 0))
			dh := ps.At(heavy).Pos.Dist(cloth.V(30, 0))
			Expect(dl).To(BeNumerically(">", 0))
			Expect(dl).To(BeNumerically("~", 4*dh, 1e-9))
		})
	})

	Describe("3x3 drape", func() {
		It("stays bounded for 100 ticks", func() {
			ps, ss, lat := cloth.CreateLattice(3, 3, 40, 1)
			initial := ps.Snapshot(nil)

			p := cloth.DefaultParams()
			p.RestLength = 40
			p.Stiffness = 7
			p.Gravity = 100
			p.Dt = 1.0 / 60

			for range 100 {
				cloth.Step(ps, ss, nil, p)
			}

			for id, pos := range ps.Positions() {
				Expect(pos.IsFinite()).To(BeTrue())
				Expect(math.Abs(pos.X - initial[id].X)).To(BeNumerically("<=", 500))
				Expect(math.Abs(pos.Y - initial[id].Y)).To(BeNumerically("<=", 500))
			}
			for x := range lat.NodesX {
				id := lat.ID(x, 0)
				Expect(ps.At(id).Pos).To(Equal(initial[id]))
			}
		})
	})

	It("panics when substeps is zero", func() {
		ps, ss, _ := cloth.CreateLattice(2, 2, 10, 1)
		p := cloth.DefaultParams()
		p.Substeps = 0
		Expect(func() { cloth.Step(ps, ss, nil, p) }).To(PanicWith(ContainSubstring("substeps")))
	})
})
