package viz

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/wavelab/internal/analysis"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/metrics"
	"github.com/san-kum/wavelab/internal/wave"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 240
	maxStepsPerTick = 64
)

// Snapshot is a rendered frame kept for replay.
type Snapshot struct {
	Raster *Raster
	Step   int
	Time   float64
	Energy float64
}

// Recorder captures frames while recording is on. Close flushes the output.
type Recorder interface {
	wave.FrameSink
	Close() error
}

// RecorderFunc opens a recorder for the grid being simulated.
type RecorderFunc func(g *grid.Grid) (Recorder, error)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a wave.Integrator from bubbletea ticks and renders the field
// as a colour heatmap.
type Model struct {
	title        string
	cfg          wave.Config
	it           *wave.Integrator
	probe        *analysis.Probe
	energy       *metrics.Energy
	width        int
	height       int
	stepsPerTick int
	running      bool
	err          error
	unstable     bool
	profile      *Canvas
	energyHist   []float64
	history      []Snapshot
	playHead     int
	newRecorder  RecorderFunc
	recorder     Recorder
	showHelp     bool
	message      string
}

// NewModel builds the integrator for cfg. Frame capture in cfg is ignored;
// recording is driven by the g key.
func NewModel(cfg wave.Config, title string) (Model, error) {
	cfg.FrameEvery = 0
	m := Model{
		title:        title,
		cfg:          cfg,
		width:        width,
		height:       height,
		stepsPerTick: 1,
		running:      true,
		profile:      NewCanvas(40, 4),
		playHead:     -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithRecorder enables the g key; open is called each time recording starts.
func (m Model) WithRecorder(open RecorderFunc) Model {
	m.newRecorder = open
	return m
}

func (m *Model) reset() error {
	g, err := grid.Build(m.cfg.System, m.cfg.Resolution, m.cfg.Spacing)
	if err != nil {
		return err
	}
	rows, cols := g.Shape()
	m.probe = analysis.NewProbe(rows/2, cols/2)
	m.energy = metrics.NewEnergy(m.cfg.WaveSpeed)
	it, err := wave.New(m.cfg,
		wave.WithMetric(m.probe),
		wave.WithMetric(m.energy),
		wave.WithLogger(discardLogger()),
	)
	if err != nil {
		return err
	}
	m.it = it
	m.err = nil
	m.unstable = false
	m.energyHist = m.energyHist[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.snapshot()
	return nil
}

// discardLogger keeps integrator logs off the alternate screen.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the integrator.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
			m.running = true
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "g":
			m.toggleRecording()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = max(16, min(msg.Width-54, 160))
		m.height = max(8, min(msg.Height-4, 60))
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick steps, stopping at Done or on error.
func (m *Model) advance() {
	for k := 0; k < m.stepsPerTick; k++ {
		if m.it.State() == wave.Done {
			m.running = false
			break
		}
		if err := m.it.Step(); err != nil {
			m.err = err
			m.running = false
			break
		}
		if m.recorder != nil {
			if err := m.recorder.Frame(m.it.StepIndex(), m.it.Time(), m.it.Current()); err != nil {
				m.message = "record: " + err.Error()
				m.stopRecording()
			}
		}
	}
	if !m.unstable && !m.it.Current().IsFinite() {
		m.unstable = true
		m.running = false
	}
	m.snapshot()
}

func (m *Model) snapshot() {
	r := Project(m.it.Grid(), m.it.Current(), m.width, 2*m.height)
	e := m.energy.Value()
	m.energyHist = append(m.energyHist, e)
	if len(m.energyHist) > historyCapacity {
		m.energyHist = m.energyHist[1:]
	}
	m.history = append(m.history, Snapshot{Raster: r, Step: m.it.StepIndex(), Time: m.it.Time(), Energy: e})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub moves the replay position through the stored snapshots.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead = max(m.playHead+dir, 0)
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) toggleRecording() {
	if m.recorder != nil {
		m.stopRecording()
		return
	}
	if m.newRecorder == nil {
		m.message = "recording unavailable"
		return
	}
	rec, err := m.newRecorder(m.it.Grid())
	if err != nil {
		m.message = "record: " + err.Error()
		return
	}
	m.recorder = rec
	m.message = ""
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Close(); err != nil {
		m.message = "record: " + err.Error()
	} else if m.message == "" {
		m.message = "recording saved"
	}
	m.recorder = nil
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return SparkLow.Render("ERROR")
	case m.unstable:
		return SparkLow.Render("UNSTABLE")
	case m.playHead != -1:
		return StatusPaused.Render(fmt.Sprintf("REPLAY step %d", m.history[m.playHead].Step))
	case m.it.State() == wave.Done:
		return StatusDone.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

// centreLine is the field along axis 0 through the middle of axis 1.
func centreLine(u *field.Field) []float64 {
	line := make([]float64, u.Rows)
	for i := range line {
		line[i] = u.At(i, u.Cols/2)
	}
	return line
}

// finiteValues drops NaN and Inf samples, which asciigraph cannot scale.
func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}

// View renders the heatmap next to the run statistics.
func (m Model) View() string {
	snap := m.history[len(m.history)-1]
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap = m.history[m.playHead]
	}
	scale := snap.Raster.Scale()
	heat := canvasStyle.Render(Heatmap(snap.Raster, CurrentTheme.Map, scale))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status())
	if m.recorder != nil {
		s.WriteString("  " + StatusRecording.Render("● REC"))
	}
	s.WriteString("\n\n")

	cfg := m.it.Config()
	progress := 1.0
	if cfg.Steps > 0 {
		progress = float64(snap.Step) / float64(cfg.Steps)
	}
	s.WriteString(ProgressBar(progress, 30) + fmt.Sprintf(" %d/%d\n\n", snap.Step, cfg.Steps))

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("System", cfg.System.String())
	row("Boundary", cfg.Boundary.String())
	row("Method", cfg.Method.String())
	row("Time", fmt.Sprintf("%.3f", snap.Time))
	row("dt", fmt.Sprintf("%.4g", m.it.Dt()))
	row("Max |u|", fmt.Sprintf("%.4f", scale))
	row("Energy", fmt.Sprintf("%.5g", snap.Energy))
	row("Speed", fmt.Sprintf("%d steps/tick", m.stepsPerTick))

	if series := finiteValues(m.probe.Values); len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(5), asciigraph.Width(34),
			asciigraph.Caption(fmt.Sprintf("u(%d,%d)", m.probe.I, m.probe.J)))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(MetricLabel.Render("Energy") + SparklineChart(m.energyHist, 30) + "\n")

	m.profile.Clear()
	line := centreLine(m.it.Current())
	m.profile.DrawProfile(line, field.FromSlice(line).MaxAbs())
	s.WriteString(Subtle.Render("centre line") + "\n" + m.profile.String())

	if m.err != nil {
		s.WriteString("\n" + SparkLow.Render(m.err.Error()) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + KeyHint.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(40) + "\nSP:Pause R:Reset Q:Quit +/-:Speed\nT:Theme  G:Record ?:Help [ ]:Replay"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, heat, statsStyle.Render(s.String()))
	if m.showHelp {
		return GlassPanel.Render(helpText) + "\n" + main
	}
	return main
}

const helpText = `KEYBOARD SHORTCUTS
  Space    pause / resume
  R        restart from the initial pulse
  Q        quit
  + / -    double / halve steps per frame
  [ / ]    step backwards / forwards through recent frames
  G        start / stop GIF recording
  T        cycle colour themes
  ?        toggle this help`
