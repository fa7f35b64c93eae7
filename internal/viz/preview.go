package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/scene"
)

const (
	previewWidth  = 60
	previewHeight = 24
)

type TickMsg time.Time

// Preview plays one sample's video timeline on a braille canvas.
type Preview struct {
	scene    *scene.Scene
	timeline []scene.Frame
	title    string
	fps      int
	pos      int
	running  bool
	loop     bool
	canvas   *Canvas
	viewport Viewport
}

func NewPreview(sc *scene.Scene, hold, fps int, title string) Preview {
	if fps <= 0 {
		fps = 10
	}
	c := NewCanvas(previewWidth, previewHeight)
	return Preview{
		scene:    sc,
		timeline: sc.Timeline(hold),
		title:    title,
		fps:      fps,
		running:  true,
		loop:     true,
		canvas:   c,
		viewport: c.Fit(sc.Style.Width, sc.Style.Height),
	}
}

func (m Preview) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Preview) Init() tea.Cmd { return m.tick() }

func (m Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.pos = 0
		case "l":
			m.loop = !m.loop
		case "[", "left", "h":
			m.running = false
			m.seek(-1)
		case "]", "right":
			m.running = false
			m.seek(1)
		case "end", "G":
			m.running = false
			m.pos = len(m.timeline) - 1
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Preview) seek(dir int) {
	m.pos = min(max(m.pos+dir, 0), len(m.timeline)-1)
}

func (m *Preview) advance() {
	if m.pos < len(m.timeline)-1 {
		m.pos++
		return
	}
	if m.loop {
		m.pos = 0
	} else {
		m.running = false
	}
}

// Frame returns the timeline frame currently on screen.
func (m Preview) Frame() scene.Frame { return m.timeline[m.pos] }

func (m Preview) View() string {
	f := m.Frame()
	m.canvas.Clear()
	m.canvas.Plot(m.viewport, m.scene.Build(f))
	canvasView := Panel.Render(m.canvas.String())

	traj := m.scene.Trajectory
	o := traj.Outcome

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.title)) + "\n\n")

	status := Success.Render("PLAYING")
	if !m.running {
		status = Warning.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	row := func(k, v string) {
		s.WriteString(Label.Render(k) + Value.Render(v) + "\n")
	}
	row("Frame", fmt.Sprintf("%d/%d", m.pos+1, len(m.timeline)))
	row("State", fmt.Sprintf("%d", f.State.Frame))
	row("Angle", fmt.Sprintf("%+.2f°", f.State.Degrees()))
	row("Left", fmt.Sprintf("%s = %d", joinInts(m.scene.Weights.Left), o.LeftSum))
	row("Right", fmt.Sprintf("%s = %d", joinInts(m.scene.Weights.Right), o.RightSum))
	row("Heavier", o.Winner.String())
	s.WriteString("\n" + ProgressBar(f.State.Progress, 24) + "\n")

	angles := traj.Angles()
	upto := f.State.Frame + 1
	if upto > 1 && o.Winner != dynamo.Tie {
		degs := make([]float64, upto)
		for i := range degs {
			degs[i] = traj.States[i].Degrees()
		}
		chart := asciigraph.Plot(degs, asciigraph.Height(5), asciigraph.Width(28), asciigraph.Caption("tilt (deg)"))
		s.WriteString("\n" + chart + "\n")
	} else {
		s.WriteString("\n" + Subtle.Render(Sparkline(angles[:upto], 28)) + "\n")
	}

	s.WriteString(KeyHint.Render("\nSP:Pause R:Restart L:Loop\n[ ]:Step END:Final Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, Panel.Render(s.String()))
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "+")
}
