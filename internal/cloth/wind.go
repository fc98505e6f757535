package cloth

import "github.com/aquilax/go-perlin"

const (
	gustAlpha     = 2.0
	gustBeta      = 2.0
	gustOctaves   = 3
	gustFrequency = 0.5 // noise samples per simulated second
)

// WindField is a rectangular force zone that sweeps along x and wraps
// within [0, Width].
type WindField struct {
	Rect  Rect
	Force Vec2
	Width float64
	// Gust scales Force by 1 + Gust*noise(t). Zero keeps the force constant.
	Gust float64

	noise *perlin.Perlin
	t     float64
}

// NewWindField panics if width is not positive.
func NewWindField(rect Rect, force Vec2, width float64) *WindField {
	precondition(width > 0, "wind width must be positive, got %v", width)
	return &WindField{Rect: rect, Force: force, Width: width}
}

// WithGust enables Perlin-noise modulation of the wind strength.
func (w *WindField) WithGust(amplitude float64, seed int64) *WindField {
	w.Gust = amplitude
	w.noise = perlin.NewPerlin(gustAlpha, gustBeta, gustOctaves, seed)
	return w
}

// Advance moves the zone by Force.X*dt and wraps it once its leading edge
// leaves the bounds.
func (w *WindField) Advance(dt float64) {
	w.t += dt
	w.Rect = w.Rect.Translate(Vec2{X: w.Force.X * dt})
	switch {
	case w.Force.X > 0 && w.Rect.Max.X > w.Width:
		w.Rect = w.Rect.Translate(Vec2{X: -w.Width})
	case w.Force.X < 0 && w.Rect.Min.X < 0:
		w.Rect = w.Rect.Translate(Vec2{X: w.Width})
	}
}

// Current is the force applied at the zone's present time.
func (w *WindField) Current() Vec2 {
	if w.Gust == 0 || w.noise == nil {
		return w.Force
	}
	return w.Force.Scale(1 + w.Gust*w.noise.Noise1D(w.t*gustFrequency))
}

// Apply adds the current force to every unpinned particle inside the zone and
// returns how many were affected.
func (w *WindField) Apply(ps *ParticleStore) int {
	f := w.Current()
	n := 0
	for i := range ps.particles {
		p := &ps.particles[i]
		if p.Pinned || !w.Rect.Contains(p.Pos) {
			continue
		}
		p.Force = p.Force.Add(f)
		n++
	}
	return n
}

// Time is the simulated time the zone has advanced through.
func (w *WindField) Time() float64 { return w.t }
