package viz

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/scenario"
	"github.com/san-kum/creepersim/internal/setting"
	"go.uber.org/zap"
)

const (
	width        = 64
	height       = 22
	trailLength  = 240
	lagHistory   = 300
	spectrumBars = 32
	fps          = 60
	gifPath      = "creeper.gif"
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live creeper view. Each tick advances the experiment by
// speed frames and redraws it from above.
type Model struct {
	cfg      scenario.Config
	exp      *scenario.Experiment
	canvas   *Canvas
	trail    []mgl64.Vec3
	lag      []float64
	bars     springField
	spectrum []float64
	running  bool
	speed    int
	theme    int
	showHelp bool
	recorder *Recorder
	status   string
	log      *zap.Logger
}

func NewModel(cfg scenario.Config) (Model, error) {
	exp, err := scenario.New(cfg, nil)
	if err != nil {
		return Model{}, err
	}
	return Model{
		cfg:     cfg,
		exp:     exp,
		canvas:  NewCanvas(width, height),
		bars:    newSpringField(fps, 8, 0.7),
		running: true,
		speed:   1,
		log:     logger.Named("viz"),
	}, nil
}

// Experiment exposes the running experiment.
func (m Model) Experiment() *scenario.Experiment { return m.exp }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg.String())
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		if an := m.exp.Analyser(); an != nil {
			m.spectrum = m.bars.smoothBars(Downsample(an.Spectrum(), spectrumBars))
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(key string) {
	settings := m.exp.Settings()
	c := m.exp.Creeper()
	switch key {
	case " ":
		m.running = !m.running
	case "r":
		m.reset()
	case ".":
		m.advance()
		m.draw()
	case ">":
		m.speed = min(16, m.speed*2)
	case "<":
		m.speed = max(1, m.speed/2)
	case "+", "=":
		m.resize(settings.CursorSize() * 1.25)
	case "-", "_":
		m.resize(settings.CursorSize() / 1.25)
	case "a":
		settings.SetAliveCursorActive(!settings.IsAliveCursorActive())
		m.status = fmt.Sprintf("alive cursor %v", settings.IsAliveCursorActive())
	case "w":
		settings.NotifyWindowChanged(setting.WindowEvent{Stage: setting.WindowBefore, Width: 1920, Height: 1080})
		settings.NotifyWindowChanged(setting.WindowEvent{Stage: setting.WindowAfter, Width: 1920, Height: 1080})
		m.status = "window changed"
	case "f":
		c.Controller.ForceMoveAllLegs()
		m.status = "forced all legs"
	case "p":
		c.Controller.Teleport()
		m.status = "teleported legs"
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
}

func (m *Model) resize(size float64) {
	if err := m.exp.Settings().SetCursorSize(size); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("cursor size %.2f", size)
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(100 / fps)
		m.status = "recording"
		return
	}
	rec := m.recorder
	m.recorder = nil
	f, err := os.Create(gifPath)
	if err != nil {
		m.status = err.Error()
		return
	}
	defer f.Close()
	if err := rec.Encode(f); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", rec.Len(), gifPath)
	m.log.Info("recording saved", zap.String("path", gifPath), zap.Int("frames", rec.Len()))
}

func (m *Model) reset() {
	exp, err := scenario.New(m.cfg, nil)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.exp.Close()
	m.exp = exp
	m.trail = m.trail[:0]
	m.lag = m.lag[:0]
	m.status = "reset"
}

func (m *Model) advance() {
	for i := 0; i < m.speed; i++ {
		s := m.exp.Step()
		m.trail = appendBounded(m.trail, s.Body, trailLength)
		m.lag = appendBounded(m.lag, s.Lag, lagHistory)
	}
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func (m *Model) viewport() Viewport {
	c := m.exp.Creeper()
	extent := (m.cfg.LegSpan*2 + 0.2) * m.exp.Settings().CursorSize() * 2
	return Viewport{
		Center: c.Arena.WorldPosition(c.Body.Model),
		Extent: max(extent, 0.5),
		Width:  width * 2,
		Height: height * 4,
	}
}

// draw renders the creeper from above: trail, end point, legs, feet, body.
func (m *Model) draw() {
	m.canvas.Clear()
	c := m.exp.Creeper()
	a := c.Arena
	vp := m.viewport()
	size := m.exp.Settings().CursorSize()

	for i := 1; i < len(m.trail); i++ {
		x, y := vp.Project(m.trail[i])
		m.canvas.Set(x, y)
	}

	end := a.WorldPosition(c.Body.EndPoint)
	vp.Dot(m.canvas, end, 0.03*size)

	body := a.WorldPosition(c.Body.Model)
	for _, l := range c.Legs {
		foot := a.WorldPosition(l.Foot())
		vp.Line(m.canvas, body, foot)
		vp.Dot(m.canvas, foot, 0.02*size)
	}
	vp.Dot(m.canvas, body, 0.08*size)

	heading := a.TransformDirection(c.Body.Model, mgl64.Vec3{0, 0, 1}).Mul(0.12 * size)
	vp.Line(m.canvas, body, body.Add(heading))

	prev := body
	for _, bone := range c.Tail {
		p := a.WorldPosition(bone)
		vp.Line(m.canvas, prev, p)
		prev = p
	}
}

func (m Model) View() string {
	theme := Themes[m.theme]
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	last := m.exp.Last()
	state := m.exp.Creeper().Controller.State()

	var s strings.Builder
	s.WriteString(title.Render(strings.ToUpper(m.cfg.Name)) + "\n")
	status := theme.PhaseStyle(last.Phase).Render(last.Phase.String())
	if !m.running {
		status += " (paused)"
	}
	if m.recorder != nil {
		status += SparkLow.Render(" ● REC")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs x%d", last.Time, m.speed))
	row("Path", m.cfg.Path)
	row("Legs", fmt.Sprintf("%d in %d groups", m.cfg.Legs, m.cfg.Groups))
	row("Steps", fmt.Sprintf("%d", len(m.exp.Steps())))
	lastGroup := "-"
	if state.LastMoveGroup >= 0 {
		lastGroup = fmt.Sprintf("%d", state.LastMoveGroup)
	}
	row("Last group", lastGroup)
	row("Lag", fmt.Sprintf("%.3f", last.Lag))
	row("Size", fmt.Sprintf("%.2f", last.Scale))
	if h := m.exp.Helper(); h != nil {
		row("Rebuilds", fmt.Sprintf("%d", h.Rebuilds()))
	}

	if len(m.lag) > 1 {
		chart := asciigraph.Plot(m.lag, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("lag"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if an := m.exp.Analyser(); an != nil {
		s.WriteString("\n" + Bars(m.spectrum) + "\n")
		row("Loudness", ProgressBar(an.Loudness(), 20))
	}

	if m.status != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(lipgloss.NewStyle().Foreground(theme.Text).Render(m.canvas.String())),
		statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space  pause / resume        .    single frame
  < >    slower / faster       R    reset
  + -    grow / shrink cursor  A    toggle alive cursor
  W      window change         F    force all legs
  P      teleport legs         T    cycle theme
  G      toggle GIF recording  Q    quit
`

// Run starts the live view and blocks until the user quits.
func Run(cfg scenario.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
