package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	tempoStartBPM = 120.0
	tempoStdBPM   = 1.0 // octaves
	tempoMaxBPM   = 320.0
	tempoMinBPM   = 30.0
	tempoACWindow = 8.0 // seconds of onset envelope to autocorrelate
)

// onsetStrength is the mean positive first difference of the log-mel
// spectrogram across bands, one value per frame.
func onsetStrength(melDB [][]float64) []float64 {
	out := make([]float64, len(melDB))
	for t := 1; t < len(melDB); t++ {
		prev, cur := melDB[t-1], melDB[t]
		if len(cur) == 0 {
			continue
		}
		var acc float64
		for i := range cur {
			if d := cur[i] - prev[i]; d > 0 {
				acc += d
			}
		}
		out[t] = acc / float64(len(cur))
	}
	return out
}

// estimateTempo picks the autocorrelation lag of the onset envelope with the
// highest log-normal-weighted score around tempoStartBPM. Returns 0 when the
// envelope carries no rhythm information.
func estimateTempo(onset []float64, sampleRate, hop int) float64 {
	if len(onset) < 2 || floats.Max(onset) <= 0 {
		return 0
	}
	framesPerSec := float64(sampleRate) / float64(hop)
	maxLag := int(tempoACWindow * framesPerSec)
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}

	mean := floats.Sum(onset) / float64(len(onset))
	centred := make([]float64, len(onset))
	for i, v := range onset {
		centred[i] = v - mean
	}

	bestLag := 0
	bestScore := 0.0
	for lag := 1; lag <= maxLag; lag++ {
		bpm := 60 * framesPerSec / float64(lag)
		if bpm > tempoMaxBPM || bpm < tempoMinBPM {
			continue
		}
		ac := floats.Dot(centred[:len(centred)-lag], centred[lag:])
		if ac <= 0 {
			continue
		}
		z := (math.Log2(bpm) - math.Log2(tempoStartBPM)) / tempoStdBPM
		score := ac * math.Exp(-0.5*z*z)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return 60 * framesPerSec / float64(bestLag)
}
