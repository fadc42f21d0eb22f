package features

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// frames slices samples into frameLength windows every hop samples. The signal
// is zero padded by frameLength/2 on both sides so frame t is centred on
// sample t*hop.
func frames(samples []float64, frameLength, hop int) [][]float64 {
	pad := frameLength / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	if len(padded) < frameLength {
		return nil
	}
	n := 1 + (len(padded)-frameLength)/hop
	out := make([][]float64, n)
	for t := 0; t < n; t++ {
		start := t * hop
		out[t] = padded[start : start+frameLength]
	}
	return out
}

// spectrogram holds per-frame magnitude spectra (bins 0..nfft/2).
type spectrogram struct {
	mag        [][]float64
	freqs      []float64
	nfft       int
	sampleRate int
}

func newSpectrogram(fr [][]float64, nfft, sampleRate int) *spectrogram {
	win := window.Hann(nfft)
	bins := nfft/2 + 1
	sp := &spectrogram{
		mag:        make([][]float64, len(fr)),
		freqs:      make([]float64, bins),
		nfft:       nfft,
		sampleRate: sampleRate,
	}
	for k := range sp.freqs {
		sp.freqs[k] = float64(k) * float64(sampleRate) / float64(nfft)
	}

	buf := make([]float64, nfft)
	for t, f := range fr {
		floats.MulTo(buf, f, win)
		spec := fft.FFTReal(buf)
		m := make([]float64, bins)
		for k := 0; k < bins; k++ {
			m[k] = cmplx.Abs(spec[k])
		}
		sp.mag[t] = m
	}
	return sp
}

// power returns |X|^2 per frame.
func (s *spectrogram) power() [][]float64 {
	out := make([][]float64, len(s.mag))
	for t, m := range s.mag {
		p := make([]float64, len(m))
		floats.MulTo(p, m, m)
		out[t] = p
	}
	return out
}
