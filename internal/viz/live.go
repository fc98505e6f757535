package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	defaultWidth    = 80
	defaultHeight   = 30
	canvasPadX      = 2
	canvasPadY      = 1
	statsWidth      = 48
	historyCapacity = 300
	recordingPath   = "cloth.gif"

	gravityStep     = 250.0
	maxGravity      = 20000.0
	stiffnessFactor = 1.25
	minStiffness    = 1.0
	maxStiffness    = 1e5
	restStep        = 5.0
	minRestLength   = 10.0
	maxRestLength   = 100.0
)

type TickMsg time.Time

// Options configures the live view.
type Options struct {
	Title string
	FPS   int
	Theme string
	// Extent frames the camera on start; zero means fit the rest pose.
	Extent cloth.Rect
}

// Model is the interactive terminal view of a running simulator.
type Model struct {
	sim      *sim.Simulator
	opts     Options
	metrics  []sim.Metric
	canvas   *Canvas
	camera   *Camera
	recorder *Recorder
	theme    int
	styles   styles

	running   bool
	recording bool
	diverged  error
	help      help.Model

	leftHeld bool
	mouse    cloth.Vec2

	keHistory      []float64
	stretchHistory []float64
	values         map[string]float64
	springs        int
	status         string
}

// NewModel builds a live view around s. metrics are observed once per
// simulated tick and shown in the side panel.
func NewModel(s *sim.Simulator, metrics []sim.Metric, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = int(1/s.Params().Dt + 0.5)
	}
	if opts.Title == "" {
		lat := s.Lattice()
		opts.Title = fmt.Sprintf("cloth %dx%d", lat.NodesX, lat.NodesY)
	}

	m := Model{
		sim:       s,
		opts:      opts,
		metrics:   metrics,
		canvas:    NewCanvas(defaultWidth, defaultHeight),
		recorder:  NewRecorder(opts.FPS),
		running:   true,
		keHistory:      make([]float64, 0, historyCapacity),
		stretchHistory: make([]float64, 0, historyCapacity),
		values:         make(map[string]float64),
		help:           help.New(),
	}
	for i, t := range Themes {
		if t.Name == opts.Theme {
			m.theme = i
		}
	}
	m.styles = newStyles(Themes[m.theme])
	m.help.Styles.ShortKey = m.styles.value
	m.help.Styles.FullKey = m.styles.value
	m.camera = m.newCamera()
	m.observe()
	m.refresh()
	return m
}

func (m Model) newCamera() *Camera {
	w, h := m.canvas.Dims()
	cam := NewCamera(w, h, m.opts.FPS)
	cam.Fit(m.frameBounds())
	return cam
}

// frameBounds is the rest pose plus room below for the cloth to sag.
func (m Model) frameBounds() cloth.Rect {
	if m.opts.Extent != (cloth.Rect{}) {
		return m.opts.Extent
	}
	lat := m.sim.Lattice()
	r0 := m.sim.Params().RestLength
	w := lat.Width(r0)
	h := float64(lat.NodesY-1) * r0
	pad := 0.2 * max(w, h, r0)
	return cloth.Rect{
		Min: cloth.V(-pad, -h-2*pad),
		Max: cloth.V(w+pad, pad),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.stopRecording()
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			if m.diverged == nil {
				m.running = !m.running
			}
		case key.Matches(msg, keys.Step):
			if !m.running && m.diverged == nil {
				m.advance()
			}
		case key.Matches(msg, keys.Reset):
			m.sim.Apply(sim.Reset())
			m.diverged = nil
			m.keHistory = m.keHistory[:0]
			m.stretchHistory = m.stretchHistory[:0]
			m.status = "reset"
		case key.Matches(msg, keys.Wind):
			m.sim.Apply(sim.ToggleWind())
			m.status = "wind " + onOff(m.sim.WindEnabled())
		case key.Matches(msg, keys.GravityUp):
			m.tune("gravity", func(p *cloth.Params) float64 {
				p.Gravity = min(p.Gravity+gravityStep, maxGravity)
				return p.Gravity
			})
		case key.Matches(msg, keys.GravityDown):
			m.tune("gravity", func(p *cloth.Params) float64 {
				p.Gravity = max(p.Gravity-gravityStep, 0)
				return p.Gravity
			})
		case key.Matches(msg, keys.StiffnessUp):
			m.tune("stiffness", func(p *cloth.Params) float64 {
				p.Stiffness = min(p.Stiffness*stiffnessFactor, maxStiffness)
				return p.Stiffness
			})
		case key.Matches(msg, keys.StiffnessDown):
			m.tune("stiffness", func(p *cloth.Params) float64 {
				p.Stiffness = max(p.Stiffness/stiffnessFactor, minStiffness)
				return p.Stiffness
			})
		case key.Matches(msg, keys.RestUp):
			m.tune("rest length", func(p *cloth.Params) float64 {
				p.RestLength = min(p.RestLength+restStep, maxRestLength)
				return p.RestLength
			})
		case key.Matches(msg, keys.RestDown):
			m.tune("rest length", func(p *cloth.Params) float64 {
				p.RestLength = max(p.RestLength-restStep, minRestLength)
				return p.RestLength
			})
		case key.Matches(msg, keys.ZoomIn):
			m.camera.ZoomIn()
		case key.Matches(msg, keys.ZoomOut):
			m.camera.ZoomOut()
		case key.Matches(msg, keys.Left):
			m.camera.Pan(-0.1, 0)
		case key.Matches(msg, keys.Right):
			m.camera.Pan(0.1, 0)
		case key.Matches(msg, keys.Up):
			m.camera.Pan(0, 0.1)
		case key.Matches(msg, keys.Down):
			m.camera.Pan(0, -0.1)
		case key.Matches(msg, keys.Fit):
			m.camera.Fit(m.frameBounds())
		case key.Matches(msg, keys.Theme):
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
			m.status = "theme " + Themes[m.theme].Name
		case key.Matches(msg, keys.Record):
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.status = "recording"
			}
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.refresh()

	case tea.MouseMsg:
		m.mouse = m.camera.CellToWorld(msg.X-canvasPadX, msg.Y-canvasPadY)
		switch {
		case msg.Button == tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease:
			m.leftHeld = true
		case msg.Action == tea.MouseActionRelease:
			m.leftHeld = false
		}
		if msg.Button == tea.MouseButtonRight && msg.Action != tea.MouseActionRelease {
			m.send(sim.Cut(m.mouse))
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.camera.ZoomIn()
		case tea.MouseButtonWheelDown:
			m.camera.ZoomOut()
		}

	case tea.WindowSizeMsg:
		w := max(msg.Width-statsWidth-2*canvasPadX, 20)
		h := max(msg.Height-2*canvasPadY, 8)
		m.canvas = NewCanvas(w, h)
		m.camera = m.newCamera()
		m.refresh()

	case TickMsg:
		if m.running {
			if m.leftHeld {
				m.sim.Enqueue(sim.Impulse(m.mouse))
			}
			m.advance()
		}
		if m.running || !m.camera.Settled() {
			m.camera.Update()
			m.refresh()
		}
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}

	return m, nil
}

// send applies ev on the next tick, or right away while paused so cuts and
// resets are visible without resuming.
func (m *Model) send(ev sim.Event) {
	if m.running {
		m.sim.Enqueue(ev)
		return
	}
	m.sim.Apply(ev)
	m.refresh()
}

// advance steps one tick and samples the metrics on the new frame.
func (m *Model) advance() {
	m.sim.Step()
	m.observe()
	m.recordHistory()
}

func (m *Model) observe() {
	f := m.sim.Snapshot()
	defer m.sim.Release(f)
	for _, metric := range m.metrics {
		metric.Observe(f)
		m.values[metric.Name()] = metric.Value()
	}
}

// tune applies fn to a copy of the current parameters. Invalid results are
// rejected and reported in the status line.
func (m *Model) tune(name string, fn func(p *cloth.Params) float64) {
	p := m.sim.Params()
	v := fn(&p)
	if err := m.sim.SetParams(p); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s %.4g", name, v)
}

func (m *Model) stopRecording() {
	if !m.recording {
		return
	}
	m.recording = false
	n := m.recorder.Len()
	if err := m.recorder.Save(recordingPath); err != nil {
		m.status = "record failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", n, recordingPath)
}

// refresh redraws the canvas from the current frame and pauses on the first
// non-finite particle.
func (m *Model) refresh() {
	f := m.sim.Snapshot()
	defer m.sim.Release(f)

	for i, p := range f.Positions {
		if !p.IsFinite() && m.diverged == nil {
			m.diverged = &cloth.ParticleError{ID: i, Pos: p, Wrapped: cloth.ErrNonFinite}
			m.running = false
		}
	}
	m.springs = len(f.Edges)

	m.draw(f)
}

func (m *Model) recordHistory() {
	if ke, ok := m.values["kinetic_energy"]; ok {
		m.keHistory = pushHistory(m.keHistory, ke)
	}
	if stretch, ok := m.values["max_stretch"]; ok {
		m.stretchHistory = pushHistory(m.stretchHistory, stretch)
	}
}

func pushHistory(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		copy(h, h[1:])
		h = h[:historyCapacity-1]
	}
	return append(h, v)
}

func (m *Model) draw(f *sim.Frame) {
	m.canvas.Clear()

	if f.WindOn {
		x0, y0 := m.camera.ToScreen(cloth.V(f.Wind.Min.X, f.Wind.Max.Y))
		x1, y1 := m.camera.ToScreen(cloth.V(f.Wind.Max.X, f.Wind.Min.Y))
		for x := x0; x <= x1; x += 6 {
			m.canvas.Set(x, y0)
			m.canvas.Set(x, y1)
		}
	}

	for _, sp := range f.Edges {
		x0, y0 := m.camera.ToScreen(f.Positions[sp.A])
		x1, y1 := m.camera.ToScreen(f.Positions[sp.B])
		m.canvas.DrawLine(x0, y0, x1, y1)
	}

	for i, pinned := range f.Pinned {
		if !pinned {
			continue
		}
		x, y := m.camera.ToScreen(f.Positions[i])
		m.canvas.DrawBox(x-1, y-1, x+1, y+1)
	}
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.opts.Title)) + "\n")

	switch {
	case m.diverged != nil:
		s.WriteString(st.bad.Render("DIVERGED") + "\n")
	case m.recording:
		s.WriteString(st.bad.Render(fmt.Sprintf("REC %d", m.recorder.Len())) + "\n")
	case m.running:
		s.WriteString(st.good.Render("RUNNING") + "\n")
	default:
		s.WriteString(st.warn.Render("PAUSED") + "\n")
	}
	if m.status != "" {
		s.WriteString(st.label.UnsetWidth().Render(m.status) + "\n")
	}

	if len(m.keHistory) > 1 {
		chart := asciigraph.Plot(m.keHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Tick", fmt.Sprintf("%d", m.sim.Tick()))
	row("Wind", onOff(m.sim.WindEnabled()))
	row("Zoom", fmt.Sprintf("%.2f", m.camera.Zoom))
	row("Springs", fmt.Sprintf("%d", m.springs))
	if v, ok := m.values["sag"]; ok {
		row("Sag", fmt.Sprintf("%.1f", v))
	}
	if v, ok := m.values["max_stretch"]; ok {
		bar := Bar(v, 10)
		style := st.good
		if v > 0.5 {
			style = st.bad
		} else if v > 0.15 {
			style = st.warn
		}
		row("Stretch", style.Render(bar)+fmt.Sprintf(" %.0f%%", 100*v))
		if len(m.stretchHistory) > 1 {
			row("", st.value.Render(Sparkline(m.stretchHistory, 20)))
		}
	}

	p := m.sim.Params()
	r0, shear, flexion := p.RestLengths()
	s.WriteString("\n")
	row("Gravity", fmt.Sprintf("%.0f", p.Gravity))
	row("Stiffness", fmt.Sprintf("%.0f", p.Stiffness))
	row("Rest", fmt.Sprintf("%.1f", r0))
	row("Shear", fmt.Sprintf("%.1f", shear))
	row("Flexion", fmt.Sprintf("%.1f", flexion))
	if m.diverged != nil {
		s.WriteString("\n" + st.bad.Render(m.diverged.Error()) + "\n")
	}

	s.WriteString(st.help.Render("LMB push  RMB cut\n" + m.help.View(keys)))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
