package laplacian

import (
	"fmt"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

// Cartesian is the five-point stencil on an (x, y) grid. Indices wrap in both
// axes whatever the boundary policy; non-periodic policies are re-imposed by
// the boundary enforcer afterwards.
type Cartesian struct {
	nx, ny int
	dx, dy float64
}

func NewCartesian(g *grid.Grid) (*Cartesian, error) {
	if g.System != grid.Cartesian {
		return nil, fmt.Errorf("%w: cartesian stencil on %s grid", ErrUnsupportedGrid, g.System)
	}
	return &Cartesian{
		nx: g.Resolution[0], ny: g.Resolution[1],
		dx: g.Spacing[0], dy: g.Spacing[1],
	}, nil
}

func (c *Cartesian) Shape() (int, int) { return c.nx, c.ny }
func (c *Cartesian) Name() string      { return "cartesian" }
func (c *Cartesian) sealed()           {}

func (c *Cartesian) ApplyTo(dst, u *field.Field) error {
	if err := checkArgs(c, dst, u); err != nil {
		return err
	}
	nx, ny := c.nx, c.ny
	dx2, dy2 := c.dx*c.dx, c.dy*c.dy
	z, out := u.Data, dst.Data

	for i := 0; i < nx; i++ {
		ip, im := wrap(i+1, nx)*ny, wrap(i-1, nx)*ny
		row := i * ny
		for j := 0; j < ny; j++ {
			jp, jm := wrap(j+1, ny), wrap(j-1, ny)
			zc := z[row+j]
			out[row+j] = (z[ip+j]-2*zc+z[im+j])/dx2 +
				(z[row+jp]-2*zc+z[row+jm])/dy2
		}
	}
	return nil
}
