package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/viz"
)

// FrameToSVG draws every spring of f as a line, scaled to fit width x height
// with a 10% margin. Pinned particles are marked with a dot. World y points
// up, so it is flipped for SVG.
func FrameToSVG(f *sim.Frame, width, height int, strokeColor string) string {
	if f == nil || len(f.Positions) == 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range f.Positions {
		if !p.IsFinite() {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	scale := math.Min(float64(width)/(maxX-minX), float64(height)/(maxY-minY))

	project := func(i int) (float64, float64) {
		p := f.Positions[i]
		return (p.X - minX) * scale, float64(height) - (p.Y-minY)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="%s" stroke-width="1" stroke-linecap="round">
`, width, height, width, height, strokeColor)

	for _, sp := range f.Edges {
		if !f.Positions[sp.A].IsFinite() || !f.Positions[sp.B].IsFinite() {
			continue
		}
		x1, y1 := project(sp.A)
		x2, y2 := project(sp.B)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n<g fill=\"#ff4444\">\n")

	for i, pinned := range f.Pinned {
		if !pinned || !f.Positions[i].IsFinite() {
			continue
		}
		cx, cy := project(i)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2.5"/>
`, cx, cy)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG dots, scale pixels per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dims()
	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#f2e8d5">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := range h {
		for x := range w {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// RenderCanvas draws the springs of f onto a fresh braille canvas of the given
// cell size, framed to the frame's bounds.
func RenderCanvas(f *sim.Frame, cols, rows int) *viz.Canvas {
	c := viz.NewCanvas(cols, rows)
	if f == nil || len(f.Positions) == 0 {
		return c
	}
	w, h := c.Dims()
	cam := viz.NewCamera(w, h, 60)
	cam.Fit(Bounds(f))
	for _, sp := range f.Edges {
		x0, y0 := cam.ToScreen(f.Positions[sp.A])
		x1, y1 := cam.ToScreen(f.Positions[sp.B])
		c.DrawLine(x0, y0, x1, y1)
	}
	return c
}
