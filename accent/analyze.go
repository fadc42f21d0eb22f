package accent

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/features"
	"github.com/maastricht-university/accent-pipeline/logging"
)

// TranscriptProvider supplies the transcript for the audio under analysis.
// Implementations absorb their own failures and return "".
type TranscriptProvider interface {
	Transcript(ctx context.Context) string
}

type TranscriptFunc func(ctx context.Context) string

func (f TranscriptFunc) Transcript(ctx context.Context) string { return f(ctx) }

// StaticTranscript is a transcript known up front.
type StaticTranscript string

func (s StaticTranscript) Transcript(context.Context) string { return string(s) }

// Score classifies a feature vector and transcript. It never fails: scoring
// errors come back as the sentinel result.
func Score(v features.Vector, transcript string) AnalysisResult {
	scores, err := Scores(v, transcript)
	if err != nil {
		return Sentinel(err)
	}
	best, confidence := scores.Best()

	proficiency, err := Proficiency(v, transcript)
	if err != nil {
		return Sentinel(err)
	}

	words := 0
	if transcript != "" {
		words = len(strings.Fields(transcript))
	}
	return AnalysisResult{
		Accent:      best.String(),
		Confidence:  confidence,
		Proficiency: proficiency,
		Summary:     Summary(best.String(), confidence, transcript, v),
		Transcript:  transcript,
		Details: TechnicalDetails{
			AllScores:           scores,
			TranscriptionLength: words,
			AudioDuration:       v.Get(features.Duration),
			SpeechRate:          v.Get(features.SpeechRate),
			PitchMean:           v.Get(features.PitchMean),
			Tempo:               v.Get(features.Tempo),
			AudioQuality:        v.Get(features.AudioQuality),
		},
	}
}

type Analyzer struct {
	extractor *features.Extractor
	log       logrus.FieldLogger
}

func NewAnalyzer(extractor *features.Extractor, log logrus.FieldLogger) *Analyzer {
	if extractor == nil {
		extractor = features.NewExtractor(features.DefaultOptions(), log)
	}
	return &Analyzer{extractor: extractor, log: logging.WithComponent(log, "accent")}
}

// Analyze extracts features from the waveform, fetches the transcript and
// scores both. It always returns a usable result.
func (a *Analyzer) Analyze(ctx context.Context, samples []float64, sampleRate int, tp TranscriptProvider) AnalysisResult {
	res, _ := a.AnalyzeWithFeatures(ctx, samples, sampleRate, tp)
	return res
}

// AnalyzeWithFeatures is Analyze that also hands back the feature vector
// the result was scored from.
func (a *Analyzer) AnalyzeWithFeatures(ctx context.Context, samples []float64, sampleRate int, tp TranscriptProvider) (AnalysisResult, features.Vector) {
	v, err := a.extractor.Extract(samples, sampleRate)
	switch {
	case errors.Is(err, features.ErrNoAudio):
		a.log.WithError(err).Error("feature extraction failed")
		return Sentinel(err), v
	case err != nil:
		a.log.WithError(err).Warn("partial feature extraction")
	}

	transcript := ""
	if tp != nil {
		transcript = tp.Transcript(ctx)
	}
	if transcript == "" {
		a.log.Info("no transcript; scoring on audio features only")
	}

	res := Score(v, transcript)
	if res.Failed() {
		a.log.WithField("cause", res.Details.Error).Error("classification failed")
		return res, v
	}
	a.log.WithFields(logrus.Fields{
		"accent":     res.Accent,
		"confidence": res.Confidence,
	}).Info("accent classified")
	return res, v
}
