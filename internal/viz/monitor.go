package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/metrics"
)

const (
	width     = 40
	height    = 16
	frameRate = 30
)

type TickMsg time.Time

// Model is the bubbletea model of the bridge monitor.
type Model struct {
	feed    *Feed
	addr    string
	snap    Snapshot
	canvas  *Canvas
	theme   int
	styles  styles
	paused  bool
	started time.Time
}

func NewModel(feed *Feed, addr string) Model {
	return Model{
		feed:    feed,
		addr:    addr,
		canvas:  NewCanvas(width, height),
		styles:  newStyles(Themes[0]),
		started: time.Now(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		case "c":
			m.feed.Clear()
			m.snap.Heights, m.snap.Speeds = nil, nil
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		}
	case TickMsg:
		if !m.paused {
			m.snap = m.feed.Snapshot()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	snap := m.snap
	last := snap.Last
	st := m.styles

	thrust := 0.0
	if last.Decoded && last.Command.Mode == bridge.ModeApply {
		thrust = last.Command.Apply.Thrust
	}
	DrawScene(m.canvas, last.State, thrust)
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render("STEPBRIDGE "+m.addr) + "\n")
	status := st.connState(snap.Conn)
	if m.paused {
		status += " " + st.warn.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if len(snap.Heights) > 1 {
		chart := asciigraph.Plot(snap.Heights, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Height"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	v := last.State.Velocity()
	w := last.State.AngularVelocity()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Episode", fmt.Sprintf("%d", last.Episode))
	row("Step", fmt.Sprintf("%d", last.Index))
	row("Sim time", fmt.Sprintf("%.2fs", last.Time))
	row("Requests", fmt.Sprintf("%d (%d dropped)", snap.Requests, snap.Dropped))
	row("Delta", fmt.Sprintf("%.2f %.2f %.2f", last.State[bridge.DX], last.State[bridge.DY], last.State[bridge.DZ]))
	row("Speed", fmt.Sprintf("%.2f m/s", math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2])))
	row("Spin", fmt.Sprintf("%.2f %.2f %.2f", w[0], w[1], w[2]))
	row("Tilt", fmt.Sprintf("%.1f°", metrics.Tilt(last.State)))
	row("Throttle", fmt.Sprintf("%.0f%%", 100*math.Max(0, math.Min(1, thrust))))

	s.WriteString(st.help.Render("P:Pause C:Clear T:Theme Q:Quit"))
	statsView := st.stats.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// Run shows the monitor until the user quits or ctx is done.
func Run(ctx context.Context, feed *Feed, addr string) error {
	p := tea.NewProgram(NewModel(feed, addr), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
