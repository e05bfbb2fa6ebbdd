package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/config"
	"github.com/san-kum/wavelab/internal/wave"
)

var (
	pickTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	pickErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type presetEntry struct {
	system, name string
}

// paramNames are the numeric fields editable before a run starts.
var paramNames = []string{"nx", "ny", "dx", "dy", "wave_speed", "steps", "pulse_width", "courant"}

type model struct {
	state, cursor int
	presets       []presetEntry
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	liveModel     Model
	newRecorder   RecorderFunc
}

// NewInteractiveApp lists every preset; choosing one opens an editor and
// then the live view.
func NewInteractiveApp(newRecorder RecorderFunc) *model {
	m := &model{state: stateMenu, width: 80, height: 24, newRecorder: newRecorder}
	for _, sys := range config.Systems() {
		for _, name := range config.ListPresets(sys) {
			m.presets = append(m.presets, presetEntry{sys, name})
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m model) forward(msg tea.Msg) (model, tea.Cmd) {
	newLive, cmd := m.liveModel.Update(msg)
	m.liveModel = newLive.(Model)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		p := m.presets[m.cursor]
		m.cfg = config.GetPreset(p.system, p.name)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.setParam(paramNames[m.paramCursor], v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.param(paramNames[m.paramCursor]), 'g', -1, 64)
	case "left", "h":
		m.nudge(0.9)
	case "right", "l":
		m.nudge(1.1)
	case "b":
		p, _ := boundary.ParsePolicy(m.cfg.Boundary)
		m.cfg.Boundary = ((p + 1) % 3).String()
	case "m":
		if meth, _ := wave.ParseMethod(m.cfg.Method); meth == wave.Spectral {
			m.cfg.Method = wave.FiniteDifference.String()
		} else {
			m.cfg.Method = wave.Spectral.String()
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *model) param(name string) float64 {
	switch name {
	case "nx":
		return float64(m.cfg.NX)
	case "ny":
		return float64(m.cfg.NY)
	case "dx":
		return m.cfg.DX
	case "dy":
		return m.cfg.DY
	case "wave_speed":
		return m.cfg.WaveSpeed
	case "steps":
		return float64(m.cfg.Steps)
	case "pulse_width":
		return m.cfg.PulseWidth
	case "courant":
		return m.cfg.Courant
	}
	return 0
}

func (m *model) setParam(name string, v float64) {
	switch name {
	case "nx":
		m.cfg.NX = int(v)
	case "ny":
		m.cfg.NY = int(v)
	case "dx":
		m.cfg.DX = v
	case "dy":
		m.cfg.DY = v
	case "wave_speed":
		m.cfg.WaveSpeed = v
	case "steps":
		m.cfg.Steps = int(v)
	case "pulse_width":
		m.cfg.PulseWidth = v
	case "courant":
		m.cfg.Courant = v
	}
}

// nudge scales the selected parameter; integer fields move by at least one.
func (m *model) nudge(factor float64) {
	name := paramNames[m.paramCursor]
	v := m.param(name)
	next := v * factor
	switch name {
	case "nx", "ny", "steps":
		if int(next) == int(v) {
			if factor > 1 {
				next = v + 1
			} else {
				next = v - 1
			}
		}
	case "courant":
		if v == 0 {
			next = 0.5 * factor
		}
	}
	m.setParam(name, next)
}

func (m model) start() (model, tea.Cmd) {
	wc, err := m.cfg.Wave()
	if err != nil {
		m.err = err
		return m, nil
	}
	p := m.presets[m.cursor]
	live, err := NewModel(wc, p.system+"/"+p.name)
	if err != nil {
		m.err = err
		return m, nil
	}
	if m.newRecorder != nil {
		live = live.WithRecorder(m.newRecorder)
	}
	m.liveModel, m.state, m.err = live, stateSim, nil
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("WAVELAB") + "\n    " + pickSub.Render("scalar wave equation solver") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, p := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-18s", p.system)), pickValue.Render(p.name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", pickIdle.Render(fmt.Sprintf("%-18s", p.system)), pickIdle.Render(p.name)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	p := m.presets[m.cursor]
	b.WriteString("\n\n    " + pickTitle.Render(strings.ToUpper(p.system+" / "+p.name)) + "\n    " +
		pickSub.Render(fmt.Sprintf("boundary %s · method %s", m.cfg.Boundary, m.cfg.Method)) + "\n    " +
		pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%10.4g", m.param(name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-12s", name)), pickValue.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", pickIdle.Render(fmt.Sprintf("%-12s", name)), pickIdle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + pickErr.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "b", "boundary", "m", "method", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive(newRecorder RecorderFunc) error {
	_, err := tea.NewProgram(NewInteractiveApp(newRecorder), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view for a single configuration.
func RunLive(cfg wave.Config, title string, newRecorder RecorderFunc) error {
	live, err := NewModel(cfg, title)
	if err != nil {
		return err
	}
	if newRecorder != nil {
		live = live.WithRecorder(newRecorder)
	}
	_, err = tea.NewProgram(live, tea.WithAltScreen()).Run()
	return err
}
