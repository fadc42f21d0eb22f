package accent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnalysisResult is the outcome of one analysis. A failed analysis is still a
// well-formed result: see Sentinel.
type AnalysisResult struct {
	Accent      string           `json:"accent"`
	Confidence  float64          `json:"confidence"`
	Proficiency float64          `json:"english_proficiency"`
	Summary     string           `json:"summary"`
	Transcript  string           `json:"transcription"`
	Details     TechnicalDetails `json:"technical_details"`
}

// Failed reports whether r is the sentinel result.
func (r AnalysisResult) Failed() bool { return r.Details.Error != "" }

// Scores is the per-accent breakdown the label was picked from.
func (r AnalysisResult) Scores() ScoreBreakdown { return r.Details.AllScores }

// TechnicalDetails are the metrics shown alongside the result.
type TechnicalDetails struct {
	AllScores           ScoreBreakdown
	TranscriptionLength int
	AudioDuration       float64
	SpeechRate          float64
	PitchMean           float64
	Tempo               float64
	AudioQuality        float64

	Error string
}

// Pair is one technical metric rendered for display.
type Pair struct {
	Key   string
	Value string
}

// Pairs lists the metrics in display order. The sentinel has only "error".
func (d TechnicalDetails) Pairs() []Pair {
	if d.Error != "" {
		return []Pair{{"error", d.Error}}
	}
	scores := make([]string, 0, numAccents)
	for _, a := range All {
		scores = append(scores, fmt.Sprintf("%s: %.1f", a, d.AllScores[a]))
	}
	return []Pair{
		{"all_accent_scores", "{" + strings.Join(scores, ", ") + "}"},
		{"transcription_length", fmt.Sprint(d.TranscriptionLength)},
		{"audio_duration", fmt.Sprintf("%.2f", d.AudioDuration)},
		{"speech_rate", fmt.Sprintf("%.2f", d.SpeechRate)},
		{"pitch_mean", fmt.Sprintf("%.2f", d.PitchMean)},
		{"tempo", fmt.Sprintf("%.2f", d.Tempo)},
		{"audio_quality", fmt.Sprintf("%.1f", d.AudioQuality)},
	}
}

type detailsJSON struct {
	AllScores           ScoreBreakdown `json:"all_accent_scores"`
	TranscriptionLength int            `json:"transcription_length"`
	AudioDuration       float64        `json:"audio_duration"`
	SpeechRate          float64        `json:"speech_rate"`
	PitchMean           float64        `json:"pitch_mean"`
	Tempo               float64        `json:"tempo"`
	AudioQuality        float64        `json:"audio_quality"`
}

func (d TechnicalDetails) MarshalJSON() ([]byte, error) {
	if d.Error != "" {
		return json.Marshal(map[string]string{"error": d.Error})
	}
	return json.Marshal(detailsJSON{
		AllScores:           d.AllScores,
		TranscriptionLength: d.TranscriptionLength,
		AudioDuration:       d.AudioDuration,
		SpeechRate:          d.SpeechRate,
		PitchMean:           d.PitchMean,
		Tempo:               d.Tempo,
		AudioQuality:        d.AudioQuality,
	})
}

func (d *TechnicalDetails) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		*d = TechnicalDetails{Error: probe.Error}
		return nil
	}
	var j detailsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*d = TechnicalDetails{
		AllScores:           j.AllScores,
		TranscriptionLength: j.TranscriptionLength,
		AudioDuration:       j.AudioDuration,
		SpeechRate:          j.SpeechRate,
		PitchMean:           j.PitchMean,
		Tempo:               j.Tempo,
		AudioQuality:        j.AudioQuality,
	}
	return nil
}

// Sentinel is the "Unknown / 0%" result carrying the cause of a failed
// analysis.
func Sentinel(cause error) AnalysisResult {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return AnalysisResult{
		Accent:  Unknown,
		Summary: "Analysis failed: " + msg,
		Details: TechnicalDetails{Error: msg},
	}
}
