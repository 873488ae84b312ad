package analysis

import (
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PaddedLength is the smallest power of two not below n.
func PaddedLength(n int) int {
	if n <= 1 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

// PowerSpectrum returns |X_k| for the first half of the spectrum of data,
// after zero-padding to PaddedLength(len(data)).
func PowerSpectrum(data []float64) []float64 {
	n := PaddedLength(len(data))
	if n < 2 {
		return nil
	}
	padded := make([]float64, n)
	copy(padded, data)

	spec := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// Frequencies returns the frequency of each PowerSpectrum bin for n samples
// spaced d apart.
func Frequencies(n int, d float64) []float64 {
	padded := PaddedLength(n)
	if padded < 2 || d == 0 {
		return nil
	}
	out := make([]float64, padded/2)
	for i := range out {
		out[i] = float64(i) / (float64(padded) * d)
	}
	return out
}

// DominantFrequency returns the frequency of the strongest bin of data once
// its mean is removed, and that bin's magnitude. It returns 0, 0 for series
// too short or too flat to have one.
func DominantFrequency(data []float64, d float64) (freq, magnitude float64) {
	if len(data) < 2 {
		return 0, 0
	}
	centred := append([]float64(nil), data...)
	floats.AddConst(-floats.Sum(data)/float64(len(data)), centred)

	ps := PowerSpectrum(centred)
	if len(ps) < 2 {
		return 0, 0
	}
	k := floats.MaxIdx(ps[1:]) + 1
	if ps[k] == 0 {
		return 0, 0
	}
	return Frequencies(len(data), d)[k], ps[k]
}

// UniformPrefix returns the length of the longest leading run of times with
// constant spacing, and that spacing. Spacings agree within a relative
// tolerance of 1e-6. Fewer than two times give (len(times), 0).
func UniformPrefix(times []float64) (n int, d float64) {
	if len(times) < 2 {
		return len(times), 0
	}
	d = times[1] - times[0]
	tol := 1e-6 * math.Abs(d)
	n = 2
	for n < len(times) && math.Abs(times[n]-times[n-1]-d) <= tol {
		n++
	}
	return n, d
}
