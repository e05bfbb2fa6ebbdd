package boundary

import (
	"fmt"
	"strings"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

type Policy int

const (
	Dirichlet Policy = iota
	Neumann
	Periodic
)

func (p Policy) String() string {
	switch p {
	case Dirichlet:
		return "dirichlet"
	case Neumann:
		return "neumann"
	case Periodic:
		return "periodic"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dirichlet", "fixed":
		return Dirichlet, nil
	case "neumann", "reflecting":
		return Neumann, nil
	case "periodic", "wrap":
		return Periodic, nil
	}
	return 0, fmt.Errorf("unknown boundary policy %q (want dirichlet, neumann or periodic)", s)
}

// Apply returns a copy of u with its boundary cells rewritten per policy.
func Apply(u *field.Field, g *grid.Grid, p Policy) (*field.Field, error) {
	out := u.Clone()
	if err := Enforce(out, g, p); err != nil {
		return nil, err
	}
	return out, nil
}

// Enforce rewrites the boundary cells of u in place. It is idempotent.
//
// Cartesian grids treat all four edges as boundaries. Radial grids only have
// the outer radius: r = 0 is an interior point and phi always wraps.
// Periodic leaves the field untouched since the stencils already wrap.
func Enforce(u *field.Field, g *grid.Grid, p Policy) error {
	if err := g.CheckField(u); err != nil {
		return err
	}
	switch p {
	case Periodic:
		return nil
	case Dirichlet, Neumann:
	default:
		return fmt.Errorf("unknown boundary policy %d", int(p))
	}

	if g.System.Radial() {
		enforceOuterRow(u, p)
		return nil
	}
	enforceRows(u, p)
	enforceCols(u, p)
	return nil
}

func enforceOuterRow(u *field.Field, p Policy) {
	last := u.Row(u.Rows - 1)
	if p == Dirichlet {
		clear(last)
		return
	}
	if u.Rows > 1 {
		copy(last, u.Row(u.Rows-2))
	}
}

func enforceRows(u *field.Field, p Policy) {
	first, last := u.Row(0), u.Row(u.Rows-1)
	if p == Dirichlet {
		clear(first)
		clear(last)
		return
	}
	if u.Rows > 1 {
		copy(first, u.Row(1))
		copy(last, u.Row(u.Rows-2))
	}
}

func enforceCols(u *field.Field, p Policy) {
	n := u.Cols
	for i := 0; i < u.Rows; i++ {
		row := u.Row(i)
		if p == Dirichlet {
			row[0], row[n-1] = 0, 0
			continue
		}
		if n > 1 {
			row[0], row[n-1] = row[1], row[n-2]
		}
	}
}
