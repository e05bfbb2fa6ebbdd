package field

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrShapeMismatch indicates two fields (or a field and a grid) disagree on shape.
var ErrShapeMismatch = errors.New("field: shape mismatch")

// Field is a dense row-major array holding the scalar u at one time level.
// One-dimensional fields are stored with Cols == 1.
type Field struct {
	Rows, Cols int
	Data       []float64
}

func New(rows, cols int) *Field {
	return &Field{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromRows copies a rectangular [][]float64 into a new field.
func FromRows(rows [][]float64) (*Field, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	f := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), cols)
		}
		copy(f.Data[i*cols:(i+1)*cols], row)
	}
	return f, nil
}

// FromSlice wraps a copy of v as a one-dimensional field.
func FromSlice(v []float64) *Field {
	f := New(len(v), 1)
	copy(f.Data, v)
	return f
}

func (f *Field) At(i, j int) float64     { return f.Data[i*f.Cols+j] }
func (f *Field) Set(i, j int, v float64) { f.Data[i*f.Cols+j] = v }
func (f *Field) Len() int                { return len(f.Data) }

// Row returns a view of row i; writes through it modify the field.
func (f *Field) Row(i int) []float64 {
	return f.Data[i*f.Cols : (i+1)*f.Cols]
}

func (f *Field) Clone() *Field {
	c := &Field{Rows: f.Rows, Cols: f.Cols, Data: make([]float64, len(f.Data))}
	copy(c.Data, f.Data)
	return c
}

// CopyFrom overwrites f with the values of src.
func (f *Field) CopyFrom(src *Field) error {
	if !f.SameShape(src) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, f.Rows, f.Cols, src.Rows, src.Cols)
	}
	copy(f.Data, src.Data)
	return nil
}

func (f *Field) SameShape(o *Field) bool {
	return o != nil && f.Rows == o.Rows && f.Cols == o.Cols
}

// CheckShape reports ErrShapeMismatch unless f is rows x cols.
func (f *Field) CheckShape(rows, cols int) error {
	if f == nil {
		return fmt.Errorf("%w: nil field, want %dx%d", ErrShapeMismatch, rows, cols)
	}
	if f.Rows != rows || f.Cols != cols || len(f.Data) != rows*cols {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrShapeMismatch, f.Rows, f.Cols, rows, cols)
	}
	return nil
}

// IsFinite reports whether every value is neither NaN nor infinite.
func (f *Field) IsFinite() bool {
	if floats.HasNaN(f.Data) {
		return false
	}
	for _, v := range f.Data {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm is the Euclidean norm of the flattened field.
func (f *Field) Norm() float64 {
	if len(f.Data) == 0 {
		return 0
	}
	return floats.Norm(f.Data, 2)
}

// MaxAbs is the infinity norm of the flattened field.
func (f *Field) MaxAbs() float64 {
	if len(f.Data) == 0 {
		return 0
	}
	return floats.Norm(f.Data, math.Inf(1))
}

// Bounds returns the minimum and maximum values.
func (f *Field) Bounds() (lo, hi float64) {
	if len(f.Data) == 0 {
		return 0, 0
	}
	return floats.Min(f.Data), floats.Max(f.Data)
}

// ToRows returns a freshly allocated [][]float64 copy.
func (f *Field) ToRows() [][]float64 {
	out := make([][]float64, f.Rows)
	for i := range out {
		out[i] = make([]float64, f.Cols)
		copy(out[i], f.Row(i))
	}
	return out
}

// EqualApprox reports whether both fields share a shape and agree within tol.
func (f *Field) EqualApprox(o *Field, tol float64) bool {
	return f.SameShape(o) && floats.EqualApprox(f.Data, o.Data, tol)
}
