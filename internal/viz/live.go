package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/sim"
)

type FrameMsg time.Time

// LiveModel drives one frame per FrameMsg and shows the rendered system
// next to the run statistics.
type LiveModel struct {
	ctx      context.Context
	driver   *sim.Driver
	renderer *TermRenderer
	energy   *metrics.EnergyDrift
	timing   *metrics.TickTiming
	interval time.Duration
	running  bool
	theme    int
	err      error
}

func NewLiveModel(ctx context.Context, d *sim.Driver, r *TermRenderer, energy *metrics.EnergyDrift, timing *metrics.TickTiming, fps int) LiveModel {
	if fps <= 0 {
		fps = 30
	}
	d.SetRenderer(r)
	return LiveModel{
		ctx:      ctx,
		driver:   d,
		renderer: r,
		energy:   energy,
		timing:   timing,
		interval: time.Second / time.Duration(fps),
		running:  true,
	}
}

// Err returns the tick failure that ended the session, if any.
func (m LiveModel) Err() error { return m.err }

func (m LiveModel) next() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return m.next()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cam := m.renderer.Camera()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.frame()
				if m.err != nil {
					return m, tea.Quit
				}
			}
		case "+", "=":
			cam.ZoomIn()
		case "-":
			cam.ZoomOut()
		case "left", "h":
			cam.RotateY(-mgl32.DegToRad(5))
		case "right", "l":
			cam.RotateY(mgl32.DegToRad(5))
		case "up", "k":
			cam.RotateX(-mgl32.DegToRad(5))
		case "down", "j":
			cam.RotateX(mgl32.DegToRad(5))
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		}
		return m, nil

	case FrameMsg:
		if m.running {
			m.frame()
			if m.err != nil {
				return m, tea.Quit
			}
		}
		return m, m.next()
	}
	return m, nil
}

func (m *LiveModel) frame() {
	if err := m.driver.Frame(m.ctx); err != nil {
		m.err = err
	}
}

func (m LiveModel) View() string {
	st := newStyles(Themes[m.theme])

	canvasView := st.canvas.Render(m.renderer.Frame())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.driver.Scene().Name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(st.failed.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(st.status.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	drawn, culled := m.renderer.Stats()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.driver.Ticks()))
	row("Time", fmt.Sprintf("%.0f", m.driver.Time()))
	row("Strategy", m.driver.Strategy().Name())
	row("Bodies", fmt.Sprintf("%d (%d off screen)", drawn+culled, culled))
	if m.timing != nil {
		row("Tick time", fmt.Sprintf("%.2f ms", m.timing.Value()))
	}
	if m.energy != nil {
		row("Energy", fmt.Sprintf("%.4g", m.energy.Current()))
		row("Drift", fmt.Sprintf("%.3e", m.energy.Value()))
		if chart := EnergyPlot(m.energy.History(), 30, 5); chart != "" {
			s.WriteString(st.graph.Render(chart) + "\n")
		}
	}

	s.WriteString(st.help.Render("SP:Pause N:Step Q:Quit\n+/-:Zoom Arrows:Rotate T:Theme"))
	statsView := st.stats.Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
