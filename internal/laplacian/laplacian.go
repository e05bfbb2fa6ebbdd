// Package laplacian implements the discrete Laplacian for each supported
// coordinate system.
//
// The operators form a closed set selected from the grid once per run:
//
//   - [Cartesian]: periodic-wrap five-point stencil on a 2D (x, y) grid
//   - [Cylindrical]: (r, phi) stencil with the r = 0 ghost-symmetry row
//   - [SphericalRadial]: 1D radial stencil with the r = 0 ghost-symmetry point
//   - [Spectral]: FFT Laplacian for periodic Cartesian fields
//
// Operators never mutate or retain their input.
package laplacian

import (
	"errors"
	"fmt"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

var (
	// ErrShapeMismatch indicates a field whose shape disagrees with the grid.
	ErrShapeMismatch = field.ErrShapeMismatch

	// ErrAliasedOutput indicates ApplyTo was asked to write into its input.
	ErrAliasedOutput = errors.New("laplacian: output aliases input")

	// ErrUnsupportedGrid indicates an operator was requested for a grid it cannot serve.
	ErrUnsupportedGrid = errors.New("laplacian: unsupported grid")
)

// Operator computes the Laplacian of fields defined on one grid.
type Operator interface {
	// ApplyTo writes the Laplacian of u into dst. dst and u must be
	// distinct fields of the grid's shape.
	ApplyTo(dst, u *field.Field) error
	Shape() (rows, cols int)
	Name() string

	sealed()
}

// For selects the finite-difference operator matching the grid's coordinate system.
func For(g *grid.Grid) (Operator, error) {
	switch g.System {
	case grid.Cartesian:
		return NewCartesian(g)
	case grid.Cylindrical:
		return NewCylindrical(g)
	case grid.SphericalRadial:
		return NewSphericalRadial(g)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGrid, g.System)
}

// Apply allocates an output field and fills it with op applied to u.
func Apply(op Operator, u *field.Field) (*field.Field, error) {
	rows, cols := op.Shape()
	dst := field.New(rows, cols)
	if err := op.ApplyTo(dst, u); err != nil {
		return nil, err
	}
	return dst, nil
}

func checkArgs(op Operator, dst, u *field.Field) error {
	rows, cols := op.Shape()
	if err := u.CheckShape(rows, cols); err != nil {
		return fmt.Errorf("%s input: %w", op.Name(), err)
	}
	if err := dst.CheckShape(rows, cols); err != nil {
		return fmt.Errorf("%s output: %w", op.Name(), err)
	}
	if dst == u || &dst.Data[0] == &u.Data[0] {
		return ErrAliasedOutput
	}
	return nil
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
