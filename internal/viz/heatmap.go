package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Heatmap renders r with upper half blocks so each terminal cell shows two
// pixel rows: foreground for the top pixel and background for the bottom.
// r.H should be even; a trailing odd row is dropped.
func Heatmap(r *Raster, cm Colormap, scale float64) string {
	var sb strings.Builder
	for y := 0; y+1 < r.H; y += 2 {
		for x := 0; x < r.W; x++ {
			top, bottom := r.At(x, y), r.At(x, y+1)
			sb.WriteString(cell(cm, top, bottom, scale))
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

func cell(cm Colormap, top, bottom, scale float64) string {
	st := lipgloss.NewStyle()
	switch {
	case math.IsNaN(top) && math.IsNaN(bottom):
		return " "
	case math.IsNaN(top):
		return st.Foreground(cm.Lipgloss(Normalize(bottom, scale))).Render("▄")
	case math.IsNaN(bottom):
		return st.Foreground(cm.Lipgloss(Normalize(top, scale))).Render("▀")
	}
	return st.
		Foreground(cm.Lipgloss(Normalize(top, scale))).
		Background(cm.Lipgloss(Normalize(bottom, scale))).
		Render("▀")
}

// ASCIIHeatmap renders r with a density ramp, for plain terminals and logs.
// Negative values use the lower half of the ramp.
func ASCIIHeatmap(r *Raster, scale float64) string {
	const ramp = " .:-=+*#%@"
	var sb strings.Builder
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := r.At(x, y)
			if math.IsNaN(v) {
				sb.WriteByte(' ')
				continue
			}
			t := Normalize(v, scale)
			sb.WriteByte(ramp[int(math.Round(t*float64(len(ramp)-1)))])
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
