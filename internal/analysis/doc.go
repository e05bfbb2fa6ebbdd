// Package analysis provides time-series tools for wave runs.
//
// A [Probe] is attached to the integrator as a metric and records the field
// value at one grid index every step. The recorded series can then be
// examined with:
//
//   - [PowerSpectrum]: single-sided amplitude spectrum (go-dsp FFT)
//   - [DominantFrequency]: strongest non-DC frequency of a series
//   - [ArrivalTime]: first time the signal magnitude crosses a threshold
//   - [GeneratePhasePortrait]: (u, du/dt) trajectory at the probe
//
// # Wavefront Timing
//
// For a pulse launched at distance d from the probe, the arrival time
// approaches d / c as the threshold drops:
//
//	t, ok := analysis.ArrivalTime(p.Values, p.Dt, 0.05)
package analysis
