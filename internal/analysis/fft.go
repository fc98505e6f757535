package analysis

import (
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT computes the discrete Fourier transform of data. Inputs whose length is
// not a power of two are zero padded.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}
	if n&(n-1) != 0 {
		data = padPow2(data)
	}
	return fft.FFTReal(data)
}

func padPow2(data []float64) []float64 {
	size := 1 << bits.Len(uint(len(data)-1))
	padded := make([]float64, size)
	copy(padded, data)
	return padded
}

// PowerSpectrum returns |X[k]| for the first half of the (padded) transform.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin of
// a series sampled every sampleDt seconds, and that bin's magnitude. The mean
// is removed first so a constant offset never wins. Series shorter than four
// samples, or flat ones, report zero.
func DominantFrequency(series []float64, sampleDt float64) (float64, float64) {
	if len(series) < 4 || sampleDt <= 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	n := 2 * len(ps)

	best, power := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > power {
			best, power = k, ps[k]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(best) / (float64(n) * sampleDt), power
}
