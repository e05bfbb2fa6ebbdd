package viz

import (
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/wave"
)

func TestColormapEnds(t *testing.T) {
	assert.Equal(t, Seismic.Stops[0], Seismic.At(-1))
	assert.Equal(t, Seismic.Stops[4], Seismic.At(2))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, Seismic.At(0.5))
	assert.Equal(t, Viridis.Stops[0], Viridis.At(math.NaN()))
}

func TestPaletteIndex(t *testing.T) {
	p := Viridis.Palette(10)
	require.Len(t, p, 11)
	assert.Equal(t, uint8(0), Viridis.Index(math.NaN(), 10))
	assert.Equal(t, uint8(1), Viridis.Index(0, 10))
	assert.Equal(t, uint8(10), Viridis.Index(1, 10))
	assert.Equal(t, color.Color(Viridis.Stops[4]), p[10])
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Normalize(0, 2))
	assert.Equal(t, 1.0, Normalize(2, 2))
	assert.Equal(t, 0.0, Normalize(-5, 2))
	assert.Equal(t, 0.5, Normalize(3, 0))
	assert.True(t, math.IsNaN(Normalize(math.NaN(), 1)))
}

func TestProject_Cartesian(t *testing.T) {
	g, err := grid.Build(grid.Cartesian, []int{2, 3}, []float64{1, 1})
	require.NoError(t, err)
	u, err := field.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	r := Project(g, u, 3, 2)
	// Axis 0 runs up the screen.
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, r.Data)
	assert.Equal(t, 6.0, r.Scale())
}

func TestProject_RadialDisk(t *testing.T) {
	g, err := grid.Build(grid.SphericalRadial, []int{5}, []float64{1})
	require.NoError(t, err)
	u := field.FromSlice([]float64{9, 1, 1, 1, 1})

	r := Project(g, u, 21, 21)
	assert.Equal(t, 9.0, r.At(10, 10))
	assert.True(t, math.IsNaN(r.At(0, 0)))
	assert.Equal(t, 1.0, r.At(10, 0))
}

func TestHeatmaps(t *testing.T) {
	r := &Raster{W: 3, H: 2, Data: []float64{-1, 0, 1, math.NaN(), math.NaN(), 0.5}}

	ascii := ASCIIHeatmap(r, 1)
	assert.Equal(t, " +@\n  #\n", ascii)

	hm := Heatmap(r, Seismic, 1)
	assert.Equal(t, 1, strings.Count(hm, "\n"))
	assert.Contains(t, hm, "▀")
}

func TestCanvasProfile(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawProfile([]float64{0, 0, 0, 0}, 1)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	// A flat profile sits on the middle sub-row, which belongs to the top cell row.
	assert.NotEqual(t, strings.Repeat("⠀", 10), lines[0])
	assert.Equal(t, strings.Repeat("⠀", 10), lines[1])

	c.Clear()
	assert.Equal(t, strings.Repeat("⠀", 10)+"\n"+strings.Repeat("⠀", 10)+"\n", c.String())
}

// returnsWithin fails the test if fn does not finish in time.
func returnsWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not return within %v", d)
	}
}

func TestCanvasProfile_NonFiniteSamples(t *testing.T) {
	blank := strings.Repeat("⠀", 40)
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		c := NewCanvas(40, 4)
		returnsWithin(t, 2*time.Second, func() {
			c.DrawProfile([]float64{0, 0.5, v, 0.2}, 1)
		})
		assert.NotEqual(t, strings.Repeat(blank+"\n", 4), c.String(), "finite samples are still drawn around %v", v)
	}

	c := NewCanvas(10, 2)
	returnsWithin(t, 2*time.Second, func() {
		c.DrawProfile([]float64{0, 5, -5, 0}, math.Inf(1))
	})
	for _, r := range c.String() {
		if r != '\n' {
			assert.GreaterOrEqual(t, r, rune(0x2800))
			assert.LessOrEqual(t, r, rune(0x28FF))
		}
	}
}

func TestSparkline_NonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		SparklineChart([]float64{1, math.NaN(), math.Inf(1), 2}, 4)
	})
	assert.NotPanics(t, func() {
		SparklineChart([]float64{math.NaN(), math.NaN()}, 4)
	})
}

func TestLiveModel_ViewSurvivesBlowUp(t *testing.T) {
	cfg := liveConfig(4000)
	cfg.Courant = 3
	m, err := NewModel(cfg, "unstable")
	require.NoError(t, err)

	for range 6 {
		m = send(m, key("+"))
	}
	for i := 0; i < 40 && m.it.Current().IsFinite(); i++ {
		m = send(m, TickMsg{})
	}
	require.False(t, m.it.Current().IsFinite())

	var view string
	returnsWithin(t, 5*time.Second, func() { view = m.View() })
	assert.Contains(t, view, "UNSTABLE")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, strings.Repeat("─", 5), SparklineChart(nil, 5))
	assert.NotEmpty(t, SparklineChart([]float64{1, 2, 3, 4, 5, 6, 7}, 4))
}

func TestThemes(t *testing.T) {
	start := CurrentTheme.Name
	defer SetTheme(start)

	SetTheme("viridis")
	assert.Equal(t, "viridis", CurrentTheme.Name)
	NextTheme()
	assert.Equal(t, "minimal", CurrentTheme.Name)
	NextTheme()
	assert.Equal(t, "seismic", CurrentTheme.Name)
	assert.Equal(t, "seismic", GetTheme("nope").Name)
}

type memRecorder struct {
	frames []int
	closed bool
}

func (r *memRecorder) Frame(step int, _ float64, _ *field.Field) error {
	r.frames = append(r.frames, step)
	return nil
}

func (r *memRecorder) Close() error {
	r.closed = true
	return nil
}

func liveConfig(steps int) wave.Config {
	return wave.Config{
		System:     grid.Cartesian,
		Resolution: []int{20, 20},
		Spacing:    []float64{1, 1},
		WaveSpeed:  1,
		Steps:      steps,
		Boundary:   boundary.Neumann,
		PulseWidth: 2,
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestLiveModel_StepsOnTick(t *testing.T) {
	m, err := NewModel(liveConfig(5), "test")
	require.NoError(t, err)

	m = send(m, TickMsg{}, TickMsg{})
	assert.Equal(t, 2, m.it.StepIndex())
	assert.Equal(t, 2, m.probe.Len())

	m = send(m, key("+"), TickMsg{})
	assert.Equal(t, 4, m.it.StepIndex())

	m = send(m, TickMsg{}, TickMsg{})
	assert.Equal(t, wave.Done, m.it.State())
	assert.False(t, m.running)
	assert.Contains(t, m.View(), "DONE")
}

func TestLiveModel_PauseAndReset(t *testing.T) {
	m, err := NewModel(liveConfig(50), "test")
	require.NoError(t, err)

	m = send(m, key(" "), TickMsg{}, TickMsg{})
	assert.Zero(t, m.it.StepIndex())
	assert.Contains(t, m.View(), "PAUSED")

	m = send(m, key(" "), TickMsg{}, key("r"))
	assert.Zero(t, m.it.StepIndex())
	assert.True(t, m.running)
}

func TestLiveModel_Replay(t *testing.T) {
	m, err := NewModel(liveConfig(50), "test")
	require.NoError(t, err)
	m = send(m, TickMsg{}, TickMsg{}, TickMsg{})

	m = send(m, key("["))
	assert.False(t, m.running)
	assert.Equal(t, len(m.history)-2, m.playHead)
	assert.Contains(t, m.View(), "REPLAY")

	m = send(m, key("]"), key("]"))
	assert.Equal(t, -1, m.playHead)
}

func TestLiveModel_Recording(t *testing.T) {
	rec := &memRecorder{}
	m, err := NewModel(liveConfig(10), "test")
	require.NoError(t, err)
	m = m.WithRecorder(func(*grid.Grid) (Recorder, error) { return rec, nil })

	m = send(m, key("g"), TickMsg{}, TickMsg{}, key("g"), TickMsg{})
	assert.Equal(t, []int{1, 2}, rec.frames)
	assert.True(t, rec.closed)
	assert.Nil(t, m.recorder)
}

func TestLiveModel_RejectsBadConfig(t *testing.T) {
	cfg := liveConfig(10)
	cfg.Method = wave.Spectral
	_, err := NewModel(cfg, "bad")
	assert.ErrorIs(t, err, wave.ErrIncompatibleMethodAndBoundary)
}

func TestInteractiveApp_StartsPreset(t *testing.T) {
	app := NewInteractiveApp(nil)
	require.NotEmpty(t, app.presets)

	var m tea.Model = *app
	for _, msg := range []tea.Msg{key("j"), tea.KeyMsg{Type: tea.KeyEnter}} {
		m, _ = m.Update(msg)
	}
	cm := m.(model)
	require.Equal(t, stateConfig, cm.state)
	require.NotNil(t, cm.cfg)
	assert.Contains(t, cm.View(), strings.ToUpper(app.presets[1].name))

	m, _ = cm.Update(key("s"))
	assert.Equal(t, stateSim, m.(model).state)
}
