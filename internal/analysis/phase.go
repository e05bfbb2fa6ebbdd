package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Points []struct{ X, Y float64 }
}

// GeneratePhasePortrait pairs each probe sample with its central-difference
// time derivative, giving the (u, du/dt) trajectory at the probe.
func GeneratePhasePortrait(values []float64, dt float64) *PhasePortrait2D {
	if len(values) < 3 || dt <= 0 {
		return nil
	}

	portrait := &PhasePortrait2D{
		Points: make([]struct{ X, Y float64 }, 0, len(values)-2),
	}
	for i := 1; i < len(values)-1; i++ {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: values[i],
			Y: (values[i+1] - values[i-1]) / (2 * dt),
		})
	}

	return portrait
}

// PhasePortraitToASCII draws the portrait on a width x height rune canvas
// with 10% padding, marking the u and du/dt axes when they are in view.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := padded(floats.Min(xs), floats.Max(xs))
	minY, maxY := padded(floats.Min(ys), floats.Max(ys))

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range canvas[r] {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}
	for _, p := range portrait.Points {
		canvas[row(p.Y)][col(p.X)] = '•'
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func padded(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, hi + 0.1*span
}
