package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	cameraFrequency = 6.0
	cameraDamping   = 1.0
	minZoom         = 0.01
	maxZoom         = 50.0
	zoomStep        = 1.25
)

// Camera maps world coordinates (y up) to canvas sub-pixels (y down).
// Zoom and pan targets are approached through a critically damped spring so
// key presses ease instead of jumping.
type Camera struct {
	Center cloth.Vec2
	Zoom   float64 // sub-pixels per world unit

	target     cloth.Vec2
	targetZoom float64
	vel        cloth.Vec2
	zoomVel    float64
	spring     harmonica.Spring

	width, height int
}

func NewCamera(width, height, fps int) *Camera {
	return &Camera{
		Zoom:       1,
		targetZoom: 1,
		spring:     harmonica.NewSpring(harmonica.FPS(fps), cameraFrequency, cameraDamping),
		width:      width,
		height:     height,
	}
}

// Fit frames the world rectangle r with a margin and snaps to it.
func (c *Camera) Fit(r cloth.Rect) {
	w := math.Max(r.Max.X-r.Min.X, 1)
	h := math.Max(r.Max.Y-r.Min.Y, 1)
	zoom := 0.85 * math.Min(float64(c.width)/w, float64(c.height)/h)

	c.Center = cloth.V((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	c.target = c.Center
	c.Zoom = clampZoom(zoom)
	c.targetZoom = c.Zoom
	c.vel, c.zoomVel = cloth.Vec2{}, 0
}

func (c *Camera) ZoomIn()  { c.targetZoom = clampZoom(c.targetZoom * zoomStep) }
func (c *Camera) ZoomOut() { c.targetZoom = clampZoom(c.targetZoom / zoomStep) }

// Pan moves the target by a fraction of the visible area.
func (c *Camera) Pan(dx, dy float64) {
	c.target = c.target.Add(cloth.V(
		dx*float64(c.width)/c.targetZoom,
		dy*float64(c.height)/c.targetZoom,
	))
}

// Update advances the easing by one frame.
func (c *Camera) Update() {
	c.Zoom, c.zoomVel = c.spring.Update(c.Zoom, c.zoomVel, c.targetZoom)
	c.Center.X, c.vel.X = c.spring.Update(c.Center.X, c.vel.X, c.target.X)
	c.Center.Y, c.vel.Y = c.spring.Update(c.Center.Y, c.vel.Y, c.target.Y)
	c.Zoom = clampZoom(c.Zoom)
}

// Settled reports whether the camera has reached its targets.
func (c *Camera) Settled() bool {
	return math.Abs(c.Zoom-c.targetZoom) < 1e-3*c.targetZoom &&
		c.Center.Dist(c.target) < 1e-3
}

func (c *Camera) ToScreen(p cloth.Vec2) (int, int) {
	x := (p.X-c.Center.X)*c.Zoom + float64(c.width)/2
	y := (c.Center.Y-p.Y)*c.Zoom + float64(c.height)/2
	return int(math.Round(x)), int(math.Round(y))
}

func (c *Camera) ToWorld(x, y float64) cloth.Vec2 {
	return cloth.V(
		(x-float64(c.width)/2)/c.Zoom+c.Center.X,
		c.Center.Y-(y-float64(c.height)/2)/c.Zoom,
	)
}

// CellToWorld converts a terminal cell to the world point under its centre.
func (c *Camera) CellToWorld(col, row int) cloth.Vec2 {
	return c.ToWorld(float64(col*2)+1, float64(row*4)+2)
}

func clampZoom(z float64) float64 {
	return math.Max(minZoom, math.Min(maxZoom, z))
}
