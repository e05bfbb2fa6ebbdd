package wave

import (
	"fmt"
	"strings"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
)

type Method int

const (
	FiniteDifference Method = iota
	Spectral
)

func (m Method) String() string {
	switch m {
	case FiniteDifference:
		return "fdm"
	case Spectral:
		return "fft"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fdm", "fd", "finite_difference":
		return FiniteDifference, nil
	case "fft", "spectral":
		return Spectral, nil
	}
	return 0, fmt.Errorf("unknown method %q (want fdm or fft)", s)
}

// State is the integrator lifecycle: Initialized -> Stepping -> Done.
type State int

const (
	Initialized State = iota
	Stepping
	Done
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config is the immutable description of one run.
type Config struct {
	System     grid.CoordSystem
	Resolution []int
	Spacing    []float64
	WaveSpeed  float64
	Steps      int
	Boundary   boundary.Policy
	Method     Method
	// PulseWidth is the standard deviation of the initial Gaussian.
	PulseWidth float64
	// Courant scales the CFL limit; zero selects cfl.DefaultCourant.
	Courant float64
	// FrameEvery is the frame-sink cadence in steps; zero disables capture.
	FrameEvery int
	// Validate rejects steps that produce NaN or Inf.
	Validate bool
}

func (c Config) validate() error {
	if c.Method == Spectral && c.Boundary != boundary.Periodic {
		return fmt.Errorf("%w: boundary %s", ErrIncompatibleMethodAndBoundary, c.Boundary)
	}
	if c.Method != FiniteDifference && c.Method != Spectral {
		return fmt.Errorf("%w: method %d", ErrInvalidConfig, int(c.Method))
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0, got %d", ErrInvalidConfig, c.Steps)
	}
	if !(c.WaveSpeed > 0) {
		return fmt.Errorf("%w: wave speed must be positive, got %g", ErrInvalidConfig, c.WaveSpeed)
	}
	if !(c.PulseWidth > 0) {
		return fmt.Errorf("%w: pulse width must be positive, got %g", ErrInvalidConfig, c.PulseWidth)
	}
	if c.Courant < 0 || c.FrameEvery < 0 {
		return fmt.Errorf("%w: courant and frame cadence must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// Sample is what metrics observe after each step. Current and Previous are
// the integrator's live buffers and must not be modified or retained.
type Sample struct {
	Step     int
	Time     float64
	Dt       float64
	Grid     *grid.Grid
	Current  *field.Field
	Previous *field.Field
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// FrameSink receives read-only snapshots at the configured cadence. The
// snapshot is the field after step (1-based) and t is the time it
// represents, step*dt; the initial pulse at t = 0 is never sent.
type FrameSink interface {
	Frame(step int, t float64, u *field.Field) error
}

// FrameFunc adapts a function to FrameSink.
type FrameFunc func(step int, t float64, u *field.Field) error

func (f FrameFunc) Frame(step int, t float64, u *field.Field) error { return f(step, t, u) }

type Result struct {
	Final      *field.Field
	Previous   *field.Field
	Grid       *grid.Grid
	Dt         float64
	Time       float64
	StepsTaken int
	Metrics    map[string]float64
}
