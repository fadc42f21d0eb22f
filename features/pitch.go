package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	pitchFMin      = 150.0
	pitchFMax      = 4000.0
	pitchThreshold = 0.1
)

// chroma folds the power spectrum of each frame onto the 12 pitch classes and
// normalises every frame by its loudest class. Returns chroma[t][class].
func chroma(power [][]float64, freqs []float64) [][]float64 {
	class := make([]int, len(freqs))
	for k, f := range freqs {
		if f <= 0 {
			class[k] = -1
			continue
		}
		midi := 12*math.Log2(f/440.0) + 69
		c := int(math.Round(midi)) % 12
		if c < 0 {
			c += 12
		}
		class[k] = c
	}

	out := make([][]float64, len(power))
	for t, p := range power {
		row := make([]float64, 12)
		for k, v := range p {
			if class[k] >= 0 {
				row[class[k]] += v
			}
		}
		if peak := floats.Max(row); peak > 0 {
			floats.Scale(1/peak, row)
		}
		out[t] = row
	}
	return out
}

// pitchTrack picks, per frame, the interpolated frequency of the strongest
// spectral peak between pitchFMin and pitchFMax. Peaks weaker than
// pitchThreshold times the frame maximum are ignored. Frames without a peak
// yield 0.
func pitchTrack(s *spectrogram) []float64 {
	out := make([]float64, len(s.mag))
	binHz := float64(s.sampleRate) / float64(s.nfft)
	lo := int(math.Ceil(pitchFMin / binHz))
	hi := int(math.Floor(pitchFMax / binHz))
	if lo < 1 {
		lo = 1
	}
	if bins := s.nfft/2 + 1; hi > bins-2 {
		hi = bins - 2
	}
	if hi < lo {
		return out
	}

	for t, m := range s.mag {
		ref := pitchThreshold * floats.Max(m)
		bestMag := 0.0
		bestHz := 0.0
		for i := lo; i <= hi; i++ {
			if m[i] <= ref || m[i] <= m[i-1] || m[i] < m[i+1] {
				continue
			}
			avg := 0.5 * (m[i+1] - m[i-1])
			shift := 2*m[i] - m[i+1] - m[i-1]
			if shift != 0 {
				shift = avg / shift
			}
			mag := m[i] + 0.5*avg*shift
			if mag > bestMag {
				bestMag = mag
				bestHz = (float64(i) + shift) * binHz
			}
		}
		out[t] = bestHz
	}
	return out
}

// voiced drops unvoiced (zero) frames.
func voiced(pitches []float64) []float64 {
	out := make([]float64, 0, len(pitches))
	for _, p := range pitches {
		if p > 0 {
			out = append(out, p)
		}
	}
	return out
}
