package analysis

import (
	"github.com/san-kum/wavelab/internal/wave"
)

// Probe records u at grid index (I, J) after every step. It satisfies
// wave.Metric so it can be attached with wave.WithMetric; Value is the
// latest sample.
type Probe struct {
	I, J   int
	Dt     float64
	Times  []float64
	Values []float64
}

func NewProbe(i, j int) *Probe {
	return &Probe{I: i, J: j}
}

func (p *Probe) Name() string { return "probe" }

func (p *Probe) Observe(s wave.Sample) {
	p.Dt = s.Dt
	p.Times = append(p.Times, s.Time)
	p.Values = append(p.Values, s.Current.At(p.I, p.J))
}

func (p *Probe) Value() float64 {
	if len(p.Values) == 0 {
		return 0
	}
	return p.Values[len(p.Values)-1]
}

func (p *Probe) Reset() {
	p.Dt = 0
	p.Times = p.Times[:0]
	p.Values = p.Values[:0]
}

func (p *Probe) Len() int { return len(p.Values) }
