package accent

import (
	"strings"

	"github.com/maastricht-university/accent-pipeline/features"
)

const (
	clarityWeight  = 0.4
	fluencyWeight  = 0.3
	languageWeight = 0.3
)

// Proficiency estimates general English proficiency (0-100) from delivery
// and, when a transcript exists, from its content. It ignores the accent.
func Proficiency(v features.Vector, transcript string) (float64, error) {
	rms, err := finite(v, features.RMSMean)
	if err != nil {
		return 0, err
	}
	zcr, err := finite(v, features.ZCRMean)
	if err != nil {
		return 0, err
	}
	centroid, err := finite(v, features.SpectralCentroidMean)
	if err != nil {
		return 0, err
	}
	rate, err := finite(v, features.SpeechRate)
	if err != nil {
		return 0, err
	}
	tempo, err := finite(v, features.Tempo)
	if err != nil {
		return 0, err
	}

	clarity := 0.0
	if rms > 0.01 {
		clarity += 20
	}
	if zcr > 0.3 && zcr < 0.7 {
		clarity += 20
	}
	if centroid > 1000 {
		clarity += 15
	}

	fluency := 0.0
	if rate >= 3 && rate <= 7 {
		fluency += 25
	}
	if tempo >= 120 && tempo <= 200 {
		fluency += 15
	}

	total := clarityWeight*clarity + fluencyWeight*fluency + languageWeight*languageScore(transcript)
	return clamp(total, 0, 100), nil
}

func languageScore(transcript string) float64 {
	if transcript == "" {
		return 0
	}
	words := strings.Fields(transcript)
	score := 0.0
	if len(words) > 10 {
		score += 20
	}
	// any non-blank text between full stops counts as a sentence
	for _, s := range strings.Split(transcript, ".") {
		if strings.TrimSpace(s) != "" {
			score += 10
			break
		}
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range strings.Fields(strings.ToLower(transcript)) {
		unique[w] = struct{}{}
	}
	if float64(len(unique)) > 0.7*float64(len(words)) {
		score += 10
	}
	return score
}
