package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	clipLevel      = 0.95
	defaultQuality = 50.0
)

// QualityReport summarises how usable a recording is. It does not feed the
// accent scores.
type QualityReport struct {
	Score         float64
	SNR           float64
	DynamicRange  float64
	ClippingRatio float64
	VoicedRatio   float64
}

// Quality scores a waveform 0-100 from a crude SNR, the dynamic range and the
// share of unclipped samples. Empty or silent input scores defaultQuality.
func Quality(samples []float64, frameLength, hopLength int) QualityReport {
	rep := QualityReport{Score: defaultQuality}
	if len(samples) == 0 {
		return rep
	}

	signal := floats.Dot(samples, samples) / float64(len(samples))
	if signal == 0 {
		return rep
	}
	noise := stat.PopVariance(samples, nil)
	rep.SNR = math.Inf(1)
	if noise > 0 {
		rep.SNR = signal / noise
	}

	maxAbs, minAbs := 0.0, math.Inf(1)
	clipped := 0
	for _, s := range samples {
		a := math.Abs(s)
		maxAbs = math.Max(maxAbs, a)
		minAbs = math.Min(minAbs, a)
		if a > clipLevel {
			clipped++
		}
	}
	rep.DynamicRange = maxAbs - minAbs
	rep.ClippingRatio = float64(clipped) / float64(len(samples))

	score := math.Log10(rep.SNR)*20*0.4 + rep.DynamicRange*100*0.4 + (1-rep.ClippingRatio)*100*0.2
	rep.Score = math.Min(100, math.Max(0, score))

	if windows := len(windowEnergies(samples, frameLength, hopLength)); windows > 0 {
		rep.VoicedRatio = float64(SpeechWindows(SpeechSegments(samples, frameLength, hopLength))) / float64(windows)
	}
	return rep
}
