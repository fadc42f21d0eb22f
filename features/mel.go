package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Slaney-style mel scale: linear below 1 kHz, logarithmic above.
const (
	melFSp       = 200.0 / 3
	melMinLogHz  = 1000.0
	melMinLogMel = melMinLogHz / melFSp
	topDB        = 80.0
	amin         = 1e-10
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(f float64) float64 {
	if f < melMinLogHz {
		return f / melFSp
	}
	return melMinLogMel + math.Log(f/melMinLogHz)/melLogStep
}

func melToHz(m float64) float64 {
	if m < melMinLogMel {
		return m * melFSp
	}
	return melMinLogHz * math.Exp(melLogStep*(m-melMinLogMel))
}

// melFilter is one triangular filter; w covers FFT bins [start, start+len(w)).
type melFilter struct {
	start int
	w     []float64
}

// melFilterbank builds nMels triangular, area-normalised filters over the FFT
// bins of an nfft-point transform.
func melFilterbank(sampleRate, nfft, nMels int) []melFilter {
	bins := nfft/2 + 1
	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(nfft)
	}

	lo, hi := hzToMel(0), hzToMel(float64(sampleRate)/2)
	melPts := floats.Span(make([]float64, nMels+2), lo, hi)
	hz := make([]float64, len(melPts))
	for i, m := range melPts {
		hz[i] = melToHz(m)
	}

	bank := make([]melFilter, nMels)
	for i := 0; i < nMels; i++ {
		left, centre, right := hz[i], hz[i+1], hz[i+2]
		norm := 2.0 / (right - left)
		start, end := -1, 0
		full := make([]float64, bins)
		for k, f := range fftFreqs {
			lower := (f - left) / (centre - left)
			upper := (right - f) / (right - centre)
			full[k] = math.Max(0, math.Min(lower, upper)) * norm
			if full[k] > 0 {
				if start < 0 {
					start = k
				}
				end = k + 1
			}
		}
		if start >= 0 {
			bank[i] = melFilter{start: start, w: full[start:end]}
		}
	}
	return bank
}

// melSpectrogram projects a power spectrogram onto the filterbank.
func melSpectrogram(power [][]float64, fb []melFilter) [][]float64 {
	out := make([][]float64, len(power))
	for t, p := range power {
		m := make([]float64, len(fb))
		for i, f := range fb {
			if len(f.w) > 0 {
				m[i] = floats.Dot(f.w, p[f.start:f.start+len(f.w)])
			}
		}
		out[t] = m
	}
	return out
}

// powerToDB converts in place to decibels (ref 1.0) and floors every value at
// topDB below the global peak.
func powerToDB(s [][]float64) [][]float64 {
	peak := math.Inf(-1)
	for _, row := range s {
		for i, x := range row {
			row[i] = 10 * math.Log10(math.Max(amin, x))
			if row[i] > peak {
				peak = row[i]
			}
		}
	}
	floor := peak - topDB
	for _, row := range s {
		for i, x := range row {
			if x < floor {
				row[i] = floor
			}
		}
	}
	return s
}

// dct2 is an orthonormal DCT-II truncated to the first n coefficients.
func dct2(x []float64, n int) []float64 {
	size := len(x)
	if n > size {
		n = size
	}
	out := make([]float64, n)
	if size == 0 {
		return out
	}
	for k := 0; k < n; k++ {
		var acc float64
		for i, v := range x {
			acc += v * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(size)))
		}
		scale := math.Sqrt(2.0 / float64(size))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(size))
		}
		out[k] = acc * scale
	}
	return out
}

// mfcc returns coefficient tracks: mfcc[c][t].
func mfcc(melDB [][]float64, nMFCC int) [][]float64 {
	out := make([][]float64, nMFCC)
	for c := range out {
		out[c] = make([]float64, len(melDB))
	}
	for t, row := range melDB {
		coeffs := dct2(row, nMFCC)
		for c, v := range coeffs {
			out[c][t] = v
		}
	}
	return out
}
