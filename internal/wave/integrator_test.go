package wave_test

import (
	"errors"
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/wave"
)

var quiet = wave.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func cartesian(n, steps int, p boundary.Policy, m wave.Method) wave.Config {
	return wave.Config{
		System:     grid.Cartesian,
		Resolution: []int{n, n},
		Spacing:    []float64{1, 1},
		WaveSpeed:  1,
		Steps:      steps,
		Boundary:   p,
		Method:     m,
		PulseWidth: 1,
	}
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string        { return "count" }
func (c *countingMetric) Observe(wave.Sample) { c.n++ }
func (c *countingMetric) Value() float64      { return float64(c.n) }
func (c *countingMetric) Reset()              { c.n = 0 }

var _ = Describe("Integrator", func() {
	Describe("construction", func() {
		It("seeds both time levels with the pulse", func() {
			it, err := wave.New(cartesian(9, 0, boundary.Periodic, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			Expect(it.State()).To(Equal(wave.Initialized))
			Expect(it.Current().At(4, 4)).To(Equal(1.0))
			Expect(it.Current().Data).To(Equal(it.Previous().Data))
		})

		It("fixes dt from the CFL selector", func() {
			it, err := wave.New(cartesian(9, 1, boundary.Neumann, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			Expect(it.Dt()).To(BeNumerically("~", 0.5/math.Sqrt2, 1e-15))
		})

		It("rejects spectral with a non-periodic boundary before stepping", func() {
			for _, p := range []boundary.Policy{boundary.Dirichlet, boundary.Neumann} {
				_, err := wave.New(cartesian(8, 10, p, wave.Spectral), quiet)
				Expect(err).To(MatchError(wave.ErrIncompatibleMethodAndBoundary))
			}
		})

		It("rejects spectral on radial grids", func() {
			cfg := cartesian(8, 1, boundary.Periodic, wave.Spectral)
			cfg.System = grid.Cylindrical
			cfg.Spacing = []float64{0.1, 2 * math.Pi / 8}
			_, err := wave.New(cfg, quiet)
			Expect(err).To(HaveOccurred())
		})

		DescribeTable("invalid configuration",
			func(mutate func(*wave.Config), target error) {
				cfg := cartesian(5, 1, boundary.Periodic, wave.FiniteDifference)
				mutate(&cfg)
				_, err := wave.New(cfg, quiet)
				Expect(errors.Is(err, target)).To(BeTrue(), "got %v", err)
			},
			Entry("negative steps", func(c *wave.Config) { c.Steps = -1 }, wave.ErrInvalidConfig),
			Entry("zero wave speed", func(c *wave.Config) { c.WaveSpeed = 0 }, wave.ErrInvalidConfig),
			Entry("zero pulse width", func(c *wave.Config) { c.PulseWidth = 0 }, wave.ErrInvalidConfig),
			Entry("negative courant", func(c *wave.Config) { c.Courant = -0.1 }, wave.ErrInvalidConfig),
			Entry("zero resolution", func(c *wave.Config) { c.Resolution = []int{0, 5} }, grid.ErrInvalidGridParameters),
			Entry("negative spacing", func(c *wave.Config) { c.Spacing = []float64{1, -1} }, grid.ErrInvalidGridParameters),
		)
	})

	Describe("lifecycle", func() {
		It("returns the initial pulse untouched for zero steps", func() {
			it, err := wave.New(cartesian(7, 0, boundary.Dirichlet, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			pulse := wave.GaussianPulse(it.Grid(), 1)

			res, err := it.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(it.State()).To(Equal(wave.Done))
			Expect(res.StepsTaken).To(BeZero())
			Expect(res.Final.Data).To(Equal(pulse.Data))
			Expect(res.Previous.Data).To(Equal(pulse.Data))
		})

		It("moves through stepping to done", func() {
			it, err := wave.New(cartesian(6, 2, boundary.Periodic, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())

			Expect(it.Step()).To(Succeed())
			Expect(it.State()).To(Equal(wave.Stepping))
			Expect(it.Step()).To(Succeed())
			Expect(it.State()).To(Equal(wave.Done))
			Expect(it.Time()).To(BeNumerically("~", 2*it.Dt(), 1e-15))
		})

		It("refuses to step after completion", func() {
			it, err := wave.New(cartesian(6, 1, boundary.Periodic, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			_, err = it.Run()
			Expect(err).NotTo(HaveOccurred())

			before := it.Current()
			Expect(it.Step()).To(MatchError(wave.ErrIntegratorAlreadyDone))
			_, err = it.Run()
			Expect(err).To(MatchError(wave.ErrIntegratorAlreadyDone))
			Expect(it.Current().Data).To(Equal(before.Data))
		})

		It("rotates time levels", func() {
			it, err := wave.New(cartesian(8, 3, boundary.Neumann, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			Expect(it.Step()).To(Succeed())
			first := it.Current()
			Expect(it.Step()).To(Succeed())
			Expect(it.Previous().Data).To(Equal(first.Data))
		})

		It("does not expose live buffers", func() {
			it, err := wave.New(cartesian(5, 1, boundary.Periodic, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			snap := it.Current()
			snap.Data[12] = 42
			Expect(it.Current().At(2, 2)).To(Equal(1.0))
		})
	})

	Describe("stability", func() {
		for _, p := range []boundary.Policy{boundary.Dirichlet, boundary.Neumann, boundary.Periodic} {
			p := p
			It("stays finite for 120 steps on 50x50 with "+p.String(), func() {
				cfg := cartesian(50, 120, p, wave.FiniteDifference)
				cfg.PulseWidth = 4
				cfg.Validate = true
				it, err := wave.New(cfg, quiet)
				Expect(err).NotTo(HaveOccurred())

				res, err := it.Run()
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Final.IsFinite()).To(BeTrue())
				Expect(res.Final.MaxAbs()).To(BeNumerically("<", 10))
			})
		}

		It("stays finite with the spectral operator", func() {
			cfg := cartesian(32, 100, boundary.Periodic, wave.Spectral)
			cfg.PulseWidth = 3
			cfg.Validate = true
			it, err := wave.New(cfg, quiet)
			Expect(err).NotTo(HaveOccurred())
			res, err := it.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final.IsFinite()).To(BeTrue())
		})

		It("stays finite on radial grids", func() {
			cyl := wave.Config{
				System:     grid.Cylindrical,
				Resolution: []int{30, 32},
				Spacing:    []float64{0.2, 2 * math.Pi / 32},
				WaveSpeed:  1,
				Steps:      100,
				Boundary:   boundary.Dirichlet,
				PulseWidth: 0.8,
				Validate:   true,
			}
			sph := cyl
			sph.System = grid.SphericalRadial
			sph.Resolution = []int{60}
			sph.Spacing = []float64{0.1}
			sph.Boundary = boundary.Neumann

			for _, cfg := range []wave.Config{cyl, sph} {
				it, err := wave.New(cfg, quiet)
				Expect(err).NotTo(HaveOccurred())
				res, err := it.Run()
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Final.IsFinite()).To(BeTrue())
			}
		})

		It("reports blow-up as a step error", func() {
			cfg := cartesian(20, 400, boundary.Periodic, wave.FiniteDifference)
			cfg.Courant = 3
			cfg.Validate = true
			it, err := wave.New(cfg, quiet)
			Expect(err).NotTo(HaveOccurred())

			res, err := it.Run()
			Expect(err).To(MatchError(wave.ErrUnstable))
			var se *wave.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(res.StepsTaken))
			Expect(res.Final.IsFinite()).To(BeTrue())
		})
	})

	Describe("single periodic step on 5x5", func() {
		It("matches the leapfrog update computed by hand", func() {
			it, err := wave.New(cartesian(5, 1, boundary.Periodic, wave.FiniteDifference), quiet)
			Expect(err).NotTo(HaveOccurred())
			Expect(it.Step()).To(Succeed())
			got := it.Current()

			u := field.New(5, 5)
			for i := 0; i < 5; i++ {
				for j := 0; j < 5; j++ {
					x, y := float64(i)-2, float64(j)-2
					u.Set(i, j, math.Exp(-(x*x+y*y)/2))
				}
			}
			dt := 0.5 / math.Sqrt(2)
			for i := 0; i < 5; i++ {
				for j := 0; j < 5; j++ {
					lap := u.At((i+1)%5, j) + u.At((i+4)%5, j) + u.At(i, (j+1)%5) + u.At(i, (j+4)%5) - 4*u.At(i, j)
					want := 2*u.At(i, j) - u.At(i, j) + dt*dt*lap
					Expect(got.At(i, j)).To(BeNumerically("~", want, 1e-12), "at (%d,%d)", i, j)
				}
			}
		})
	})

	Describe("observers", func() {
		It("feeds metrics every step and sinks at the cadence", func() {
			var frames []int
			var times []float64
			sink := wave.FrameFunc(func(step int, t float64, u *field.Field) error {
				frames = append(frames, step)
				times = append(times, t)
				u.Data[0] = math.NaN()
				return nil
			})
			m := &countingMetric{}

			cfg := cartesian(10, 7, boundary.Neumann, wave.FiniteDifference)
			cfg.FrameEvery = 3
			it, err := wave.New(cfg, quiet, wave.WithFrameSink(sink), wave.WithMetric(m))
			Expect(err).NotTo(HaveOccurred())

			res, err := it.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal([]int{1, 4, 7}))
			Expect(times).To(HaveLen(3))
			for k, step := range frames {
				Expect(times[k]).To(BeNumerically("~", float64(step)*it.Dt(), 1e-12))
			}
			Expect(res.Metrics).To(HaveKeyWithValue("count", 7.0))
			Expect(res.Final.IsFinite()).To(BeTrue())
		})

		It("keeps running when a sink fails", func() {
			sink := wave.FrameFunc(func(int, float64, *field.Field) error {
				return errors.New("disk full")
			})
			cfg := cartesian(6, 4, boundary.Periodic, wave.FiniteDifference)
			cfg.FrameEvery = 1
			it, err := wave.New(cfg, quiet, wave.WithFrameSink(sink))
			Expect(err).NotTo(HaveOccurred())
			res, err := it.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(4))
		})
	})
})
