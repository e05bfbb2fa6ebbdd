package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavelab/internal/viz"
)

// RasterToSVG draws a raster as a grid of cell-sized rectangles. Cells
// outside the domain are left as background.
func RasterToSVG(r *viz.Raster, cm viz.Colormap, cell float64) string {
	if r == nil || r.W == 0 || r.H == 0 {
		return ""
	}
	width := float64(r.W) * cell
	height := float64(r.H) * cell
	scale := r.Scale()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := r.At(x, y)
			if math.IsNaN(v) {
				continue
			}
			c := cm.At(viz.Normalize(v, scale))
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#%02x%02x%02x"/>
`, float64(x)*cell, float64(y)*cell, cell, cell, c.R, c.G, c.B)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws y against x as a single polyline with 10% padding.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	xs, ys = xs[:n], ys[:n]

	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
