package accent

import (
	"fmt"
	"strings"

	"github.com/maastricht-university/accent-pipeline/features"
)

// Summary builds the narrative: confidence, duration, pace, clarity and
// transcript sentences, in that order, space-joined.
func Summary(label string, confidence float64, transcript string, v features.Vector) string {
	var parts []string

	switch {
	case confidence >= 80:
		parts = append(parts, fmt.Sprintf("Strong indicators of %s English accent detected.", label))
	case confidence >= 60:
		parts = append(parts, fmt.Sprintf("Moderate indicators of %s English accent detected.", label))
	case confidence >= 40:
		parts = append(parts, fmt.Sprintf("Some characteristics of %s English accent present.", label))
	default:
		parts = append(parts, fmt.Sprintf("Accent classification uncertain. Possible %s influence.", label))
	}

	switch d := v.Get(features.Duration); {
	case d < 10:
		parts = append(parts, "Short audio sample may limit accuracy.")
	case d > 60:
		parts = append(parts, "Long audio sample provides good analysis depth.")
	}

	switch r := v.Get(features.SpeechRate); {
	case r > 6:
		parts = append(parts, "Fast speaking pace observed.")
	case r < 3:
		parts = append(parts, "Slow speaking pace observed.")
	default:
		parts = append(parts, "Normal speaking pace.")
	}

	switch rms := v.Get(features.RMSMean); {
	case rms > 0.05:
		parts = append(parts, "Clear audio quality.")
	case rms < 0.01:
		parts = append(parts, "Audio quality may affect accuracy.")
	}

	switch {
	case transcript != "" && len(strings.Fields(transcript)) > 20:
		parts = append(parts, "Sufficient speech content for reliable analysis.")
	case transcript != "":
		parts = append(parts, "Limited speech content detected.")
	default:
		parts = append(parts, "Speech transcription unavailable - analysis based on audio features only.")
	}

	return strings.Join(parts, " ")
}
