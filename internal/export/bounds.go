package export

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

// Bounds is the bounding rectangle of the finite positions of f.
func Bounds(f *sim.Frame) cloth.Rect {
	r := cloth.Rect{
		Min: cloth.V(math.Inf(1), math.Inf(1)),
		Max: cloth.V(math.Inf(-1), math.Inf(-1)),
	}
	for _, p := range f.Positions {
		if !p.IsFinite() {
			continue
		}
		r.Min = cloth.V(math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y))
		r.Max = cloth.V(math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y))
	}
	if math.IsInf(r.Min.X, 1) {
		return cloth.Rect{}
	}
	return r
}
