package features

import "gonum.org/v1/gonum/floats"

// SpeechThresholdRatio scales the mean window energy into the speech threshold.
const SpeechThresholdRatio = 0.3

// Segment is a run of speech windows, [Start, End) in window indices.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SpeechSegments finds contiguous runs of windows whose energy (sum of squared
// samples) exceeds SpeechThresholdRatio times the mean window energy. Windows
// are frameLength samples long and start every hopLength samples; a window must
// fit strictly inside the signal. A run still open at the end is closed as the
// final segment.
func SpeechSegments(samples []float64, frameLength, hopLength int) []Segment {
	energies := windowEnergies(samples, frameLength, hopLength)
	if len(energies) == 0 {
		return nil
	}
	threshold := floats.Sum(energies) / float64(len(energies)) * SpeechThresholdRatio

	var segments []Segment
	inSpeech := false
	start := 0
	for i, e := range energies {
		speech := e > threshold
		switch {
		case speech && !inSpeech:
			start = i
			inSpeech = true
		case !speech && inSpeech:
			segments = append(segments, Segment{Start: start, End: i})
			inSpeech = false
		}
	}
	if inSpeech {
		segments = append(segments, Segment{Start: start, End: len(energies)})
	}
	return segments
}

func windowEnergies(samples []float64, frameLength, hopLength int) []float64 {
	if frameLength <= 0 || hopLength <= 0 {
		return nil
	}
	var out []float64
	for i := 0; i < len(samples)-frameLength; i += hopLength {
		w := samples[i : i+frameLength]
		out = append(out, floats.Dot(w, w))
	}
	return out
}

// SpeechWindows counts the windows covered by segs.
func SpeechWindows(segs []Segment) int {
	n := 0
	for _, s := range segs {
		n += s.End - s.Start
	}
	return n
}
