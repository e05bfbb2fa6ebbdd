package wave

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/cfl"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/laplacian"
)

// Integrator advances u_tt = c^2 lap(u) with the explicit leapfrog update
//
//	next = 2*current - previous + (c*dt)^2 * lap(current)
//
// for a fixed number of steps. It is not safe for concurrent use.
type Integrator struct {
	cfg    Config
	grid   *grid.Grid
	op     laplacian.Operator
	dt     float64
	coeff  float64
	logger *slog.Logger

	current, previous *field.Field
	// scratch receives the next level and lap the operator output; neither
	// holds state between steps.
	scratch, lap *field.Field

	step  int
	state State

	sinks   []FrameSink
	metrics []Metric
}

type Option func(*Integrator)

func WithLogger(l *slog.Logger) Option {
	return func(it *Integrator) { it.logger = l }
}

func WithFrameSink(s FrameSink) Option {
	return func(it *Integrator) { it.sinks = append(it.sinks, s) }
}

func WithMetric(m Metric) Option {
	return func(it *Integrator) { it.metrics = append(it.metrics, m) }
}

// New validates cfg, builds the grid, selects the Laplacian, fixes dt and
// seeds both time levels with the Gaussian pulse (zero initial velocity).
func New(cfg Config, opts ...Option) (*Integrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Courant == 0 {
		cfg.Courant = cfl.DefaultCourant
	}
	cfg.Resolution = append([]int(nil), cfg.Resolution...)
	cfg.Spacing = append([]float64(nil), cfg.Spacing...)

	g, err := grid.Build(cfg.System, cfg.Resolution, cfg.Spacing)
	if err != nil {
		return nil, err
	}

	var op laplacian.Operator
	if cfg.Method == Spectral {
		op, err = laplacian.NewSpectral(g)
	} else {
		op, err = laplacian.For(g)
	}
	if err != nil {
		return nil, err
	}

	dt, err := cfl.ForGrid(g, cfg.WaveSpeed, cfg.Courant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	it := &Integrator{
		cfg:     cfg,
		grid:    g,
		op:      op,
		dt:      dt,
		coeff:   (cfg.WaveSpeed * dt) * (cfg.WaveSpeed * dt),
		logger:  slog.Default(),
		scratch: g.NewField(),
		lap:     g.NewField(),
		state:   Initialized,
	}
	for _, opt := range opts {
		opt(it)
	}
	if it.logger == nil {
		it.logger = slog.Default()
	}

	it.current = GaussianPulse(g, cfg.PulseWidth)
	it.previous = it.current.Clone()

	for _, m := range it.metrics {
		m.Reset()
	}

	it.logger.Debug("integrator initialized",
		"grid", g.String(),
		"operator", op.Name(),
		"boundary", cfg.Boundary.String(),
		"dt", dt,
		"steps", cfg.Steps,
	)
	return it, nil
}

func (it *Integrator) Grid() *grid.Grid       { return it.grid }
func (it *Integrator) Dt() float64            { return it.dt }
func (it *Integrator) StepIndex() int         { return it.step }
func (it *Integrator) State() State           { return it.state }
func (it *Integrator) Time() float64          { return float64(it.step) * it.dt }
func (it *Integrator) Config() Config         { return it.cfg }
func (it *Integrator) Operator() string       { return it.op.Name() }
func (it *Integrator) Remaining() int         { return it.cfg.Steps - it.step }
func (it *Integrator) Current() *field.Field  { return it.current.Clone() }
func (it *Integrator) Previous() *field.Field { return it.previous.Clone() }

// Step advances one time level. Errors leave current and previous untouched.
func (it *Integrator) Step() error {
	if it.state == Done || it.step >= it.cfg.Steps {
		it.state = Done
		return ErrIntegratorAlreadyDone
	}

	if err := it.op.ApplyTo(it.lap, it.current); err != nil {
		return it.stepError(err)
	}

	next := it.scratch.Data
	floats.ScaleTo(next, 2, it.current.Data)
	floats.Sub(next, it.previous.Data)
	floats.AddScaled(next, it.coeff, it.lap.Data)

	if err := boundary.Enforce(it.scratch, it.grid, it.cfg.Boundary); err != nil {
		return it.stepError(err)
	}
	if it.cfg.Validate && !it.scratch.IsFinite() {
		return it.stepError(ErrUnstable)
	}

	it.previous, it.current, it.scratch = it.current, it.scratch, it.previous
	it.step++
	it.state = Stepping
	if it.step == it.cfg.Steps {
		it.state = Done
	}

	it.observe()
	return nil
}

func (it *Integrator) stepError(err error) error {
	return &StepError{Step: it.step, Time: it.Time(), Wrapped: err}
}

func (it *Integrator) observe() {
	if len(it.metrics) > 0 {
		s := Sample{
			Step:     it.step,
			Time:     it.Time(),
			Dt:       it.dt,
			Grid:     it.grid,
			Current:  it.current,
			Previous: it.previous,
		}
		for _, m := range it.metrics {
			m.Observe(s)
		}
	}

	every := it.cfg.FrameEvery
	if every == 0 || len(it.sinks) == 0 || (it.step-1)%every != 0 {
		return
	}
	snap := it.current.Clone()
	for _, sink := range it.sinks {
		if err := sink.Frame(it.step, it.Time(), snap); err != nil {
			it.logger.Warn("frame sink failed", "step", it.step, "err", err)
		}
	}
}

// Run steps until the configured count is reached and returns the final state.
func (it *Integrator) Run() (*Result, error) {
	if it.state == Done {
		return nil, ErrIntegratorAlreadyDone
	}
	for it.step < it.cfg.Steps {
		if err := it.Step(); err != nil {
			return it.result(), err
		}
	}
	it.state = Done

	res := it.result()
	it.logger.Info("run complete",
		"steps", res.StepsTaken,
		"t", res.Time,
		"max_abs", res.Final.MaxAbs(),
	)
	return res, nil
}

func (it *Integrator) result() *Result {
	res := &Result{
		Final:      it.current.Clone(),
		Previous:   it.previous.Clone(),
		Grid:       it.grid,
		Dt:         it.dt,
		Time:       it.Time(),
		StepsTaken: it.step,
		Metrics:    make(map[string]float64, len(it.metrics)),
	}
	for _, m := range it.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
