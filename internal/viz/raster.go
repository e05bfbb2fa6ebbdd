package viz

import (
	"math"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

// Raster is a W x H image of field samples in screen order (row 0 at the
// top). Pixels outside the physical domain hold NaN.
type Raster struct {
	W, H int
	Data []float64
}

func (r *Raster) At(x, y int) float64 { return r.Data[y*r.W+x] }

// Scale is the largest finite |value|, used for symmetric colouring.
func (r *Raster) Scale() float64 {
	s := 0.0
	for _, v := range r.Data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			s = math.Max(s, math.Abs(v))
		}
	}
	return s
}

// Project resamples u onto a w x h raster with nearest-neighbour lookup.
//
// Cartesian fields are drawn with axis 0 running up the screen. Cylindrical
// fields are unrolled onto the disk they describe and spherical-radial fields
// onto a central slice through the sphere.
func Project(g *grid.Grid, u *field.Field, w, h int) *Raster {
	r := &Raster{W: w, H: h, Data: make([]float64, w*h)}
	rows, cols := g.Shape()

	switch g.System {
	case grid.Cartesian:
		for y := 0; y < h; y++ {
			i := (h - 1 - y) * rows / h
			for x := 0; x < w; x++ {
				r.Data[y*w+x] = u.At(i, x*cols/w)
			}
		}
	case grid.Cylindrical, grid.SphericalRadial:
		dr := g.Spacing[0]
		rmax := float64(rows-1) * dr
		dphi := 0.0
		if g.System == grid.Cylindrical {
			dphi = g.Spacing[1]
		}
		for y := 0; y < h; y++ {
			py := rmax * (1 - 2*(float64(y)+0.5)/float64(h))
			for x := 0; x < w; x++ {
				px := rmax * (2*(float64(x)+0.5)/float64(w) - 1)
				rad := math.Hypot(px, py)
				if rad > rmax+dr/2 {
					r.Data[y*w+x] = math.NaN()
					continue
				}
				i := min(int(math.Round(rad/dr)), rows-1)
				j := 0
				if dphi > 0 {
					phi := math.Atan2(py, px)
					if phi < 0 {
						phi += 2 * math.Pi
					}
					j = int(math.Round(phi/dphi)) % cols
				}
				r.Data[y*w+x] = u.At(i, j)
			}
		}
	}
	return r
}
