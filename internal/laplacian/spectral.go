package laplacian

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

// Spectral computes the Laplacian of a periodic Cartesian field in Fourier
// space: FFT, multiply by -(kx^2 + ky^2), inverse FFT. It agrees with
// [Cartesian] in the continuum limit only.
type Spectral struct {
	nx, ny int
	// symbol[i*ny+j] = -(kx[i]^2 + ky[j]^2)
	symbol []float64
}

func NewSpectral(g *grid.Grid) (*Spectral, error) {
	if g.System != grid.Cartesian {
		return nil, fmt.Errorf("%w: spectral laplacian needs a cartesian grid, got %s", ErrUnsupportedGrid, g.System)
	}
	nx, ny := g.Resolution[0], g.Resolution[1]
	kx := Wavenumbers(nx, g.Spacing[0])
	ky := Wavenumbers(ny, g.Spacing[1])

	s := &Spectral{nx: nx, ny: ny, symbol: make([]float64, nx*ny)}
	for i, a := range kx {
		for j, b := range ky {
			s.symbol[i*ny+j] = -(a*a + b*b)
		}
	}
	return s, nil
}

func (s *Spectral) Shape() (int, int) { return s.nx, s.ny }
func (s *Spectral) Name() string      { return "spectral" }
func (s *Spectral) sealed()           {}

func (s *Spectral) ApplyTo(dst, u *field.Field) error {
	if err := checkArgs(s, dst, u); err != nil {
		return err
	}
	spec := fft.FFT2Real(u.ToRows())
	for i, row := range spec {
		for j := range row {
			row[j] *= complex(s.symbol[i*s.ny+j], 0)
		}
	}
	for i, row := range fft.IFFT2(spec) {
		out := dst.Row(i)
		for j, v := range row {
			out[j] = real(v)
		}
	}
	return nil
}

// Wavenumbers returns the angular wavenumbers 2*pi*fftfreq(n, d) in FFT order.
func Wavenumbers(n int, d float64) []float64 {
	k := make([]float64, n)
	scale := 2 * math.Pi / (float64(n) * d)
	for m := 0; m < n; m++ {
		f := m
		if m > (n-1)/2 {
			f = m - n
		}
		k[m] = float64(f) * scale
	}
	return k
}
