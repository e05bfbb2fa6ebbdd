package export

import (
	"errors"
	"image"
	"image/gif"
	"os"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/viz"
)

const paletteSize = 254

// ErrNoFrames is returned by Close when nothing was captured.
var ErrNoFrames = errors.New("export: no frames captured")

// GIFWriter is a wave.FrameSink that buffers frames in memory and encodes
// an animated GIF on Close. Each frame is coloured symmetrically about zero
// using its own peak amplitude.
type GIFWriter struct {
	path   string
	grid   *grid.Grid
	width  int
	height int
	pixel  int
	delay  int
	cmap   viz.Colormap
	frames []*image.Paletted
	times  []float64
}

type GIFOption func(*GIFWriter)

// WithSize sets the raster size in cells and the pixel size of each cell.
func WithSize(w, h, pixel int) GIFOption {
	return func(g *GIFWriter) { g.width, g.height, g.pixel = w, h, pixel }
}

// WithDelay sets the per-frame delay in hundredths of a second.
func WithDelay(d int) GIFOption {
	return func(g *GIFWriter) { g.delay = d }
}

func WithColormap(cm viz.Colormap) GIFOption {
	return func(g *GIFWriter) { g.cmap = cm }
}

func NewGIFWriter(path string, g *grid.Grid, opts ...GIFOption) *GIFWriter {
	w := &GIFWriter{
		path:   path,
		grid:   g,
		width:  160,
		height: 160,
		pixel:  2,
		delay:  5,
		cmap:   viz.Seismic,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *GIFWriter) Frame(step int, t float64, u *field.Field) error {
	if err := w.grid.CheckField(u); err != nil {
		return err
	}
	r := viz.Project(w.grid, u, w.width, w.height)
	scale := r.Scale()

	pal := w.cmap.Palette(paletteSize)
	img := image.NewPaletted(image.Rect(0, 0, w.width*w.pixel, w.height*w.pixel), pal)
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			idx := w.cmap.Index(viz.Normalize(r.At(x, y), scale), paletteSize)
			for py := 0; py < w.pixel; py++ {
				row := img.Pix[(y*w.pixel+py)*img.Stride:]
				for px := 0; px < w.pixel; px++ {
					row[x*w.pixel+px] = idx
				}
			}
		}
	}
	w.frames = append(w.frames, img)
	w.times = append(w.times, t)
	return nil
}

func (w *GIFWriter) Len() int { return len(w.frames) }

// Times returns the simulation time of each captured frame.
func (w *GIFWriter) Times() []float64 { return w.times }

func (w *GIFWriter) Close() error {
	if len(w.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range w.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, w.delay)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
