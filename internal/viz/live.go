package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/view"
	"github.com/san-kum/gravsim/internal/vmath"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	frameTime       = time.Second / 60

	// panStep is the keyboard pan per press, in sub-pixels.
	panStep = 8.0

	// vectorScale is the drawn length of a velocity vector per unit speed.
	vectorScale = 0.5
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameTime, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the terminal live view of one simulation.
type Model struct {
	cfg         *config.Config
	sim         *nbody.Simulation
	camera      *view.Camera
	canvas      *Canvas
	theme       Theme
	styles      styles
	showVectors bool
	lastTick    time.Time
	dragging    bool
	dragFrom    vmath.Vec2
	energy      []float64
	active      []float64
	err         error
}

// NewModel samples the bodies from cfg and frames them on the canvas.
func NewModel(cfg *config.Config) (Model, error) {
	s, err := nbody.FromConfig(cfg.Sampling(), cfg.Seed)
	if err != nil {
		return Model{}, err
	}

	canvas := NewCanvas(width, height)
	w, h := canvas.Pixels()
	camera := view.NewCamera(w, h)
	camera.TimeScale = cfg.TimeScale
	camera.Fit(s.Extent())
	camera.Zoom *= cfg.View.Zoom

	m := Model{
		cfg:    cfg,
		sim:    s,
		camera: camera,
		canvas: canvas,
		energy: make([]float64, 0, historyCapacity),
		active: make([]float64, 0, historyCapacity),
	}
	m.setTheme(Themes[0])
	m.record()
	m.draw()
	return m, nil
}

// Run blocks until the user quits.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.camera.TogglePause()
		case "c":
			m.camera.Recenter()
		case "left":
			m.camera.Slower()
		case "right":
			m.camera.Faster()
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "w":
			m.camera.Pan(0, panStep)
		case "s":
			m.camera.Pan(0, -panStep)
		case "a":
			m.camera.Pan(-panStep, 0)
		case "d":
			m.camera.Pan(panStep, 0)
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case "t":
			m.setTheme(NextTheme(m.theme.Name))
		case "v":
			m.showVectors = !m.showVectors
		}
		m.draw()

	case tea.MouseMsg:
		m.mouse(msg)
		m.draw()

	case TickMsg:
		now := time.Time(msg)
		frame := frameTime.Seconds()
		if !m.lastTick.IsZero() {
			frame = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now

		if m.camera.Advance(m.sim, frame) > 0 {
			m.record()
		}
		if m.cfg.ValidateState && !m.sim.Valid() {
			m.err = fmt.Errorf("t=%.4f: %w", m.sim.Time(), nbody.ErrInvalidState)
			return m, tea.Quit
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

// mouse maps cell coordinates to sub-pixels; the canvas is offset by its
// one-column left padding.
func (m *Model) mouse(msg tea.MouseMsg) {
	pos := vmath.Vec2{X: float64(msg.X-1) * 2, Y: float64(msg.Y) * 4}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.camera.ZoomIn()
	case msg.Button == tea.MouseButtonWheelDown:
		m.camera.ZoomOut()
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.dragging = true
		m.dragFrom = pos
	case msg.Action == tea.MouseActionMotion && m.dragging:
		d := pos.Sub(m.dragFrom)
		m.camera.Drag(d.X, d.Y)
		m.dragFrom = pos
	case msg.Action == tea.MouseActionRelease:
		m.dragging = false
	}
}

func (m *Model) reset() error {
	s, err := nbody.FromConfig(m.cfg.Sampling(), m.cfg.Seed)
	if err != nil {
		return err
	}
	m.sim = s
	m.camera.Reset()
	m.energy = m.energy[:0]
	m.active = m.active[:0]
	m.record()
	return nil
}

func (m *Model) setTheme(t Theme) {
	m.theme = t
	m.styles = newStyles(t)
}

func (m *Model) record() {
	if len(m.energy) == historyCapacity {
		m.energy = append(m.energy[:0], m.energy[1:]...)
		m.active = append(m.active[:0], m.active[1:]...)
	}
	m.energy = append(m.energy, m.sim.Energy())
	m.active = append(m.active, float64(m.sim.ActiveCount()))
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, b := range m.sim.Bodies() {
		if !m.camera.Visible(b.Pos, b.Radius) {
			continue
		}
		x, y := m.camera.WorldToScreen(b.Pos)
		m.canvas.FillCircle(x, y, m.camera.Scale(b.Radius))

		if m.showVectors {
			tip := b.Pos.Add(b.Velocity().Scale(vectorScale))
			tx, ty := m.camera.WorldToScreen(tip)
			m.canvas.DrawLine(int(x), int(y), int(tx), int(ty))
		}
	}
}

// Sim exposes the running simulation for inspection.
func (m Model) Sim() *nbody.Simulation { return m.sim }

func (m Model) Camera() *view.Camera { return m.camera }

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(fmt.Sprintf("GRAVSIM  %s", strings.ToUpper(m.cfg.Policy))) + "\n")

	for _, line := range m.camera.HUD(m.sim) {
		switch {
		case line == "":
			continue
		case line == "PAUSED":
			s.WriteString(st.paused.Render(line) + "\n")
		default:
			label, value, _ := strings.Cut(line, ": ")
			s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
		}
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	s.WriteString("\n" + st.label.Render("Active") + st.graph.Render(Sparkline(m.active, 26)) + "\n")

	s.WriteString(st.help.Render("SP:Pause C:Center ←→:Speed\n+-:Zoom WASD:Pan R:Reset\nT:Theme V:Vectors Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
}
