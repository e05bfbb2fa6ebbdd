package cfl

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/wavelab/internal/grid"
)

// DefaultCourant is the fraction of the explicit stability limit used when
// no Courant number is configured.
const DefaultCourant = 0.5

// ErrInvalidInput indicates a non-positive wave speed, Courant number or spacing.
var ErrInvalidInput = errors.New("cfl: wave speed, courant number and spacings must be positive")

// Dt returns courant / (c * sqrt(sum 1/h^2)). The leapfrog scheme is stable
// for courant <= 1.
func Dt(waveSpeed, courant float64, spacings ...float64) (float64, error) {
	if !(waveSpeed > 0) || !(courant > 0) || len(spacings) == 0 {
		return 0, fmt.Errorf("%w: c=%g courant=%g spacings=%v", ErrInvalidInput, waveSpeed, courant, spacings)
	}
	sum := 0.0
	for _, h := range spacings {
		if !(h > 0) {
			return 0, fmt.Errorf("%w: spacing %g", ErrInvalidInput, h)
		}
		sum += 1 / (h * h)
	}
	return courant / (waveSpeed * math.Sqrt(sum)), nil
}

// Spacings returns the effective physical spacings that bound the explicit
// step on g. The angular spacing of a cylindrical grid is the arc length of
// the innermost ring, r[1]*dphi.
func Spacings(g *grid.Grid) []float64 {
	switch g.System {
	case grid.Cylindrical:
		dr, dphi := g.Spacing[0], g.Spacing[1]
		return []float64{dr, dr * dphi}
	default:
		return append([]float64(nil), g.Spacing...)
	}
}

// ForGrid selects a stable timestep for g.
func ForGrid(g *grid.Grid, waveSpeed, courant float64) (float64, error) {
	return Dt(waveSpeed, courant, Spacings(g)...)
}
