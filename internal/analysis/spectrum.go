package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first len(data)/2 frequency
// bins of data.
func PowerSpectrum(data []float64) []float64 {
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-constant
// component of samples taken every dt, or 0 when there is none.
func DominantPeriod(samples []float64, dt float64) float64 {
	n := len(samples)
	if n < 4 || dt <= 0 {
		return 0
	}

	var mean float64
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	peak, best := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			peak, best = k, ps[k]
		}
	}
	if peak == 0 || best < 1e-9 {
		return 0
	}
	return float64(n) * dt / float64(peak)
}
