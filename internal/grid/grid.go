package grid

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavelab/internal/field"
)

// ErrInvalidGridParameters indicates a non-positive resolution or spacing,
// or an axis count that does not fit the coordinate system.
var ErrInvalidGridParameters = errors.New("grid: invalid grid parameters")

type CoordSystem int

const (
	Cartesian CoordSystem = iota
	Cylindrical
	SphericalRadial
)

var coordNames = map[CoordSystem]string{
	Cartesian:       "cartesian",
	Cylindrical:     "cylindrical",
	SphericalRadial: "spherical_radial",
}

func (c CoordSystem) String() string {
	if n, ok := coordNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CoordSystem(%d)", int(c))
}

// Dims is the number of axes a grid in this system carries.
func (c CoordSystem) Dims() int {
	if c == SphericalRadial {
		return 1
	}
	return 2
}

// Radial reports whether axis 0 is a radius with a singularity at r = 0.
func (c CoordSystem) Radial() bool {
	return c == Cylindrical || c == SphericalRadial
}

func ParseCoordSystem(s string) (CoordSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cartesian", "cart", "xy":
		return Cartesian, nil
	case "cylindrical", "cyl", "polar":
		return Cylindrical, nil
	case "spherical_radial", "spherical", "sph":
		return SphericalRadial, nil
	}
	return 0, fmt.Errorf("unknown coordinate system %q (want cartesian, cylindrical or spherical_radial)", s)
}

// Grid is immutable once built. Axis 0 is x (cartesian) or r (radial
// systems); axis 1 is y or phi.
type Grid struct {
	System     CoordSystem
	Resolution []int
	Spacing    []float64
	// Axes holds the 1D coordinate arrays, Axes[k][i] = i*Spacing[k].
	Axes [][]float64
	// Mesh holds the "ij"-indexed 2D broadcasts of Axes (X, Y or R, PHI).
	// It is nil for one-dimensional grids.
	Mesh []*field.Field
}

// Build constructs the coordinate arrays for a coordinate system.
func Build(system CoordSystem, resolution []int, spacing []float64) (*Grid, error) {
	if _, ok := coordNames[system]; !ok {
		return nil, fmt.Errorf("%w: unknown coordinate system %d", ErrInvalidGridParameters, int(system))
	}
	dims := system.Dims()
	if len(resolution) != dims || len(spacing) != dims {
		return nil, fmt.Errorf("%w: %s grid needs %d resolution and spacing values, got %d and %d",
			ErrInvalidGridParameters, system, dims, len(resolution), len(spacing))
	}
	for k := 0; k < dims; k++ {
		if resolution[k] <= 0 {
			return nil, fmt.Errorf("%w: resolution[%d] = %d", ErrInvalidGridParameters, k, resolution[k])
		}
		if !(spacing[k] > 0) || math.IsInf(spacing[k], 0) {
			return nil, fmt.Errorf("%w: spacing[%d] = %g", ErrInvalidGridParameters, k, spacing[k])
		}
	}

	g := &Grid{
		System:     system,
		Resolution: append([]int(nil), resolution...),
		Spacing:    append([]float64(nil), spacing...),
		Axes:       make([][]float64, dims),
	}
	for k := 0; k < dims; k++ {
		g.Axes[k] = axis(resolution[k], spacing[k])
	}
	if dims == 2 {
		g.Mesh = meshIJ(g.Axes[0], g.Axes[1])
	}
	return g, nil
}

// axis mirrors linspace(0, (n-1)*d, n).
func axis(n int, d float64) []float64 {
	a := make([]float64, n)
	if n == 1 {
		return a
	}
	return floats.Span(a, 0, float64(n-1)*d)
}

func meshIJ(a0, a1 []float64) []*field.Field {
	m0, m1 := field.New(len(a0), len(a1)), field.New(len(a0), len(a1))
	for i, v0 := range a0 {
		for j, v1 := range a1 {
			m0.Set(i, j, v0)
			m1.Set(i, j, v1)
		}
	}
	return []*field.Field{m0, m1}
}

// Shape is the shape every field on this grid must have.
func (g *Grid) Shape() (rows, cols int) {
	if len(g.Resolution) == 1 {
		return g.Resolution[0], 1
	}
	return g.Resolution[0], g.Resolution[1]
}

func (g *Grid) NewField() *field.Field {
	return field.New(g.Shape())
}

// CheckField reports field.ErrShapeMismatch when u does not fit the grid.
func (g *Grid) CheckField(u *field.Field) error {
	rows, cols := g.Shape()
	return u.CheckShape(rows, cols)
}

// Midpoint returns the physical coordinate halfway along each axis.
func (g *Grid) Midpoint() []float64 {
	mid := make([]float64, len(g.Resolution))
	for k, n := range g.Resolution {
		mid[k] = 0.5 * float64(n-1) * g.Spacing[k]
	}
	return mid
}

// Radii returns the radial coordinate array of a radial grid.
func (g *Grid) Radii() []float64 {
	if !g.System.Radial() {
		return nil
	}
	return g.Axes[0]
}

func (g *Grid) String() string {
	return fmt.Sprintf("%s %v spacing %v", g.System, g.Resolution, g.Spacing)
}
