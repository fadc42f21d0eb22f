package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const rollPercent = 0.85

func spectralCentroid(s *spectrogram) []float64 {
	out := make([]float64, len(s.mag))
	for t, m := range s.mag {
		total := floats.Sum(m)
		if total <= 0 {
			continue
		}
		out[t] = floats.Dot(m, s.freqs) / total
	}
	return out
}

// spectralBandwidth is the magnitude-weighted spread around the centroid (p=2).
func spectralBandwidth(s *spectrogram, centroid []float64) []float64 {
	out := make([]float64, len(s.mag))
	for t, m := range s.mag {
		total := floats.Sum(m)
		if total <= 0 {
			continue
		}
		var acc float64
		for k, w := range m {
			d := s.freqs[k] - centroid[t]
			acc += (w / total) * d * d
		}
		out[t] = math.Sqrt(acc)
	}
	return out
}

// spectralRolloff is the lowest frequency below which rollPercent of the
// frame's spectral magnitude lies.
func spectralRolloff(s *spectrogram) []float64 {
	out := make([]float64, len(s.mag))
	cum := make([]float64, len(s.freqs))
	for t, m := range s.mag {
		floats.CumSum(cum, m)
		total := cum[len(cum)-1]
		if total <= 0 {
			continue
		}
		thresh := rollPercent * total
		for k, c := range cum {
			if c >= thresh {
				out[t] = s.freqs[k]
				break
			}
		}
	}
	return out
}

// zeroCrossingRate is the fraction of adjacent sample pairs that change sign.
func zeroCrossingRate(fr [][]float64) []float64 {
	out := make([]float64, len(fr))
	for t, f := range fr {
		if len(f) == 0 {
			continue
		}
		n := 0
		for i := 1; i < len(f); i++ {
			if math.Signbit(f[i]) != math.Signbit(f[i-1]) {
				n++
			}
		}
		out[t] = float64(n) / float64(len(f))
	}
	return out
}

func rms(fr [][]float64) []float64 {
	out := make([]float64, len(fr))
	for t, f := range fr {
		if len(f) == 0 {
			continue
		}
		out[t] = math.Sqrt(floats.Dot(f, f) / float64(len(f)))
	}
	return out
}
