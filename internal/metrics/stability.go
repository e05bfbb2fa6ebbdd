package metrics

import (
	"math"

	"github.com/san-kum/wavelab/internal/wave"
)

// Stability is the fraction of observed steps whose field was finite and
// bounded by threshold everywhere.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(smp wave.Sample) {
	s.samples++
	for _, val := range smp.Current.Data {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxAmplitude tracks the largest |u| seen over the run.
type MaxAmplitude struct {
	peak float64
}

func NewMaxAmplitude() *MaxAmplitude { return &MaxAmplitude{} }

func (m *MaxAmplitude) Name() string { return "max_amplitude" }

func (m *MaxAmplitude) Observe(s wave.Sample) {
	m.peak = math.Max(m.peak, s.Current.MaxAbs())
}

func (m *MaxAmplitude) Value() float64 { return m.peak }
func (m *MaxAmplitude) Reset()         { m.peak = 0 }

// Standard returns the metric set recorded for every CLI run.
func Standard(waveSpeed float64) []wave.Metric {
	return []wave.Metric{
		NewEnergy(waveSpeed),
		NewEnergyDrift(waveSpeed),
		NewMaxAmplitude(),
		NewStability(1e6),
	}
}
