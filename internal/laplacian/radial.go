package laplacian

import (
	"fmt"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

// angularEps keeps 1/r^2 finite if a radius underflows; it is negligible for
// every r[i] with i >= 1 on a grid built with dr > 0.
const angularEps = 1e-15

// Cylindrical is the (r, phi) stencil. Phi always wraps. Row 0 (r = 0) uses
// the ghost value u(-dr) = u(+dr) and carries no angular term. The row past
// the outer radius is clamped to the last row.
type Cylindrical struct {
	nr, nphi int
	dr, dphi float64
	r        []float64
}

func NewCylindrical(g *grid.Grid) (*Cylindrical, error) {
	if g.System != grid.Cylindrical {
		return nil, fmt.Errorf("%w: cylindrical stencil on %s grid", ErrUnsupportedGrid, g.System)
	}
	return &Cylindrical{
		nr: g.Resolution[0], nphi: g.Resolution[1],
		dr: g.Spacing[0], dphi: g.Spacing[1],
		r: g.Radii(),
	}, nil
}

func (c *Cylindrical) Shape() (int, int) { return c.nr, c.nphi }
func (c *Cylindrical) Name() string      { return "cylindrical" }
func (c *Cylindrical) sealed()           {}

func (c *Cylindrical) ApplyTo(dst, u *field.Field) error {
	if err := checkArgs(c, dst, u); err != nil {
		return err
	}
	nr, nphi := c.nr, c.nphi
	dr2, dphi2 := c.dr*c.dr, c.dphi*c.dphi

	// r = 0
	up, uc := u.Row(clampRow(1, nr)), u.Row(0)
	out := dst.Row(0)
	for j := 0; j < nphi; j++ {
		out[j] = 2.0 * (up[j] - uc[j]) / dr2
	}

	for i := 1; i < nr; i++ {
		up, um, uc := u.Row(clampRow(i+1, nr)), u.Row(i-1), u.Row(i)
		r := c.r[i]
		out := dst.Row(i)
		for j := 0; j < nphi; j++ {
			jp, jm := wrap(j+1, nphi), wrap(j-1, nphi)
			d2r := (up[j]-2*uc[j]+um[j])/dr2 + (up[j]-um[j])/(2*c.dr)/r
			d2phi := (uc[jp] - 2*uc[j] + uc[jm]) / dphi2
			out[j] = d2r + d2phi/(r*r+angularEps)
		}
	}
	return nil
}

// SphericalRadial is the 1D radial stencil of a spherically symmetric field.
// Index 0 (r = 0) uses the ghost value u(-dr) = u(+dr); the outer index is
// clamped like the cylindrical case.
type SphericalRadial struct {
	nr int
	dr float64
	r  []float64
}

func NewSphericalRadial(g *grid.Grid) (*SphericalRadial, error) {
	if g.System != grid.SphericalRadial {
		return nil, fmt.Errorf("%w: spherical stencil on %s grid", ErrUnsupportedGrid, g.System)
	}
	return &SphericalRadial{nr: g.Resolution[0], dr: g.Spacing[0], r: g.Radii()}, nil
}

func (s *SphericalRadial) Shape() (int, int) { return s.nr, 1 }
func (s *SphericalRadial) Name() string      { return "spherical_radial" }
func (s *SphericalRadial) sealed()           {}

func (s *SphericalRadial) ApplyTo(dst, u *field.Field) error {
	if err := checkArgs(s, dst, u); err != nil {
		return err
	}
	nr, dr2 := s.nr, s.dr*s.dr
	v, out := u.Data, dst.Data

	out[0] = 2.0 * (v[clampRow(1, nr)] - v[0]) / dr2

	for i := 1; i < nr; i++ {
		up, um, uc := v[clampRow(i+1, nr)], v[i-1], v[i]
		r := s.r[i]
		out[i] = (up-2*uc+um)/dr2 + (2.0/r)*(up-um)/(2*s.dr)
	}
	return nil
}

func clampRow(i, n int) int {
	if i > n-1 {
		return n - 1
	}
	return i
}
