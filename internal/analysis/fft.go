package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k| for k in [0, n/2) of the real series data.
// Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// Frequencies returns the bin centres matching PowerSpectrum for a series
// of length n sampled every dt.
func Frequencies(n int, dt float64) []float64 {
	f := make([]float64, n/2)
	for k := range f {
		f[k] = float64(k) / (float64(n) * dt)
	}
	return f
}

// DominantFrequency returns the frequency of the largest non-DC bin.
// ok is false when the series is too short to resolve one.
func DominantFrequency(data []float64, dt float64) (freq float64, ok bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, false
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return Frequencies(len(data), dt)[best], true
}

// RemoveMean subtracts the series mean so the DC bin does not dominate.
func RemoveMean(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// ArrivalTime returns the first sample time at which |u| reaches threshold,
// linearly interpolated between samples.
func ArrivalTime(data []float64, dt, threshold float64) (float64, bool) {
	for i, v := range data {
		if math.Abs(v) < threshold {
			continue
		}
		if i == 0 {
			return dt, true
		}
		prev := math.Abs(data[i-1])
		frac := (threshold - prev) / (math.Abs(v) - prev)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		// Sample i was taken after step i+1.
		return (float64(i) + frac) * dt, true
	}
	return 0, false
}
