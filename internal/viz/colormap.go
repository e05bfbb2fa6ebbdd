package viz

import (
	"image/color"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Colormap is a piecewise-linear ramp over t in [0, 1].
type Colormap struct {
	Name  string
	Stops []color.RGBA
}

var (
	Viridis = Colormap{Name: "viridis", Stops: []color.RGBA{
		{68, 1, 84, 255},
		{59, 82, 139, 255},
		{33, 145, 140, 255},
		{94, 201, 98, 255},
		{253, 231, 37, 255},
	}}

	// Seismic is diverging: zero maps to white, so signed amplitudes read
	// as blue troughs and red crests.
	Seismic = Colormap{Name: "seismic", Stops: []color.RGBA{
		{0, 0, 76, 255},
		{0, 0, 255, 255},
		{255, 255, 255, 255},
		{255, 0, 0, 255},
		{128, 0, 0, 255},
	}}

	Grayscale = Colormap{Name: "gray", Stops: []color.RGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
	}}
)

// At returns the colour at t, clamped to [0, 1]. NaN maps to the first stop.
func (cm Colormap) At(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return cm.Stops[0]
	}
	if t >= 1 {
		return cm.Stops[len(cm.Stops)-1]
	}
	pos := t * float64(len(cm.Stops)-1)
	k := int(pos)
	f := pos - float64(k)
	a, b := cm.Stops[k], cm.Stops[k+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}

// Palette samples n colours for paletted images. Index 0 is reserved for
// pixels outside the domain.
func (cm Colormap) Palette(n int) color.Palette {
	p := make(color.Palette, n+1)
	p[0] = color.RGBA{10, 10, 10, 255}
	for i := 0; i < n; i++ {
		p[i+1] = cm.At(float64(i) / float64(n-1))
	}
	return p
}

// Index maps t to a palette index produced by Palette(n).
func (cm Colormap) Index(t float64, n int) uint8 {
	if math.IsNaN(t) {
		return 0
	}
	k := int(math.Round(clamp01(t) * float64(n-1)))
	return uint8(k + 1)
}

func (cm Colormap) Lipgloss(t float64) lipgloss.Color {
	c := cm.At(t)
	return lipgloss.Color(hexColor(int(c.R), int(c.G), int(c.B)))
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// Normalize maps u in [-scale, scale] to [0, 1] with zero at 0.5.
func Normalize(u, scale float64) float64 {
	if math.IsNaN(u) {
		return math.NaN()
	}
	if scale == 0 {
		return 0.5
	}
	return clamp01(0.5 + 0.5*u/scale)
}
