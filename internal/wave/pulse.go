package wave

import (
	"math"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

// GaussianPulse returns exp(-d^2 / (2 sigma^2)) where d is the physical
// distance from the grid midpoint.
//
// Cylindrical grids measure d in the embedding plane between (R, PHI) and the
// midpoint (r_mid, phi_mid); spherical grids use |r - r_mid|.
func GaussianPulse(g *grid.Grid, sigma float64) *field.Field {
	u := g.NewField()
	mid := g.Midpoint()
	s2 := 2 * sigma * sigma

	switch g.System {
	case grid.Cartesian:
		x0, y0 := mid[0], mid[1]
		X, Y := g.Mesh[0], g.Mesh[1]
		for k := range u.Data {
			dx, dy := X.Data[k]-x0, Y.Data[k]-y0
			u.Data[k] = math.Exp(-(dx*dx + dy*dy) / s2)
		}
	case grid.Cylindrical:
		r0, phi0 := mid[0], mid[1]
		R, PHI := g.Mesh[0], g.Mesh[1]
		for k := range u.Data {
			r := R.Data[k]
			d2 := r*r + r0*r0 - 2*r*r0*math.Cos(PHI.Data[k]-phi0)
			u.Data[k] = math.Exp(-d2 / s2)
		}
	case grid.SphericalRadial:
		r0 := mid[0]
		for i, r := range g.Radii() {
			d := r - r0
			u.Data[i] = math.Exp(-d * d / s2)
		}
	}
	return u
}
