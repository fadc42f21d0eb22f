package accent

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/maastricht-university/accent-pipeline/features"
)

// Sub-score caps. They sum to MaxScore.
const (
	TempoCap    = 20.0
	PitchCap    = 25.0
	SpectralCap = 20.0
	RateCap     = 15.0
	LexicalCap  = 20.0

	MaxScore = TempoCap + PitchCap + SpectralCap + RateCap + LexicalCap

	// spectralCredit is all a spectral rule can award; SpectralCap stays 20.
	spectralCredit = 15.0
	halfCredit     = 10.0
	tempoSlack     = 30.0 // bpm around the range midpoint
	rateSlack      = 2.0  // segments/s around the range midpoint
	lexicalScale   = 0.2

	// QualityWindow is the duration (s) below which confidence is discounted.
	QualityWindow = 30.0
)

// ErrClassification marks a scoring failure; Analyze turns it into the
// sentinel result.
var ErrClassification = errors.New("classification failed")

// spectralRules holds one sign/threshold test per accent over the first five
// MFCC means. Canadian has none.
var spectralRules = [numAccents]func(m [5]float64) bool{
	American:   func(m [5]float64) bool { return m[1] > 0 && m[2] < 0 },
	British:    func(m [5]float64) bool { return m[1] < 0 && m[3] > 0 },
	Australian: func(m [5]float64) bool { return m[2] > 0 && m[4] > 0 },
	Indian:     func(m [5]float64) bool { return m[0] > 10 && m[1] > 0 },
}

// SubScores are the five capped components of one accent's raw score.
type SubScores struct {
	Tempo    float64 `json:"tempo"`
	Pitch    float64 `json:"pitch"`
	Spectral float64 `json:"spectral"`
	Rate     float64 `json:"speech_rate"`
	Lexical  float64 `json:"lexical"`
}

func (s SubScores) Total() float64 {
	return s.Tempo + s.Pitch + s.Spectral + s.Rate + s.Lexical
}

func finite(v features.Vector, name string) (float64, error) {
	x := v.Get(name)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: %s is %v", ErrClassification, name, x)
	}
	return x, nil
}

func rangeFit(r Range, x, slack, full float64) float64 {
	switch {
	case r.Contains(x):
		return full
	case math.Abs(x-r.Mid()) < slack:
		return halfCredit
	}
	return 0
}

func tempoFit(p Profile, v features.Vector) (float64, error) {
	tempo, err := finite(v, features.Tempo)
	if err != nil {
		return 0, err
	}
	return rangeFit(p.Tempo, tempo, tempoSlack, TempoCap), nil
}

func pitchFit(p Profile, v features.Vector) (float64, error) {
	std, err := finite(v, features.PitchStd)
	if err != nil {
		return 0, err
	}
	if p.PitchVariation.Contains(std) {
		return PitchCap, nil
	}
	return 0, nil
}

func spectralFit(p Profile, v features.Vector) (float64, error) {
	rule := spectralRules[p.Accent]
	if rule == nil {
		return 0, nil
	}
	var m [5]float64
	for i := range m {
		x, err := finite(v, features.MFCCMean(i))
		if err != nil {
			return 0, err
		}
		m[i] = x
	}
	if rule(m) {
		return spectralCredit, nil
	}
	return 0, nil
}

func rateFit(p Profile, v features.Vector) (float64, error) {
	rate, err := finite(v, features.SpeechRate)
	if err != nil {
		return 0, err
	}
	return rangeFit(p.SpeechRate, rate, rateSlack, RateCap), nil
}

func lexicalFit(p Profile, transcript string) float64 {
	if transcript == "" {
		return 0
	}
	return math.Min(LexicalCap, TextScore(p.Accent, transcript)*lexicalScale)
}

// Evaluate computes the five sub-scores of accent a.
func Evaluate(a Accent, v features.Vector, transcript string) (SubScores, error) {
	p, ok := Lookup(a)
	if !ok {
		return SubScores{}, fmt.Errorf("%w: unknown accent %d", ErrClassification, int(a))
	}
	var s SubScores
	var err error
	if s.Tempo, err = tempoFit(p, v); err != nil {
		return SubScores{}, err
	}
	if s.Pitch, err = pitchFit(p, v); err != nil {
		return SubScores{}, err
	}
	if s.Spectral, err = spectralFit(p, v); err != nil {
		return SubScores{}, err
	}
	if s.Rate, err = rateFit(p, v); err != nil {
		return SubScores{}, err
	}
	s.Lexical = lexicalFit(p, transcript)
	return s, nil
}

// QualityFactor discounts short samples linearly: min(1, duration/30).
func QualityFactor(duration float64) float64 {
	return clamp(duration/QualityWindow, 0, 1)
}

// AccentScore is a's confidence in [0,100], quality discount applied.
func AccentScore(a Accent, v features.Vector, transcript string) (float64, error) {
	s, err := Evaluate(a, v, transcript)
	if err != nil {
		return 0, err
	}
	duration, err := finite(v, features.Duration)
	if err != nil {
		return 0, err
	}
	return clamp(s.Total()/MaxScore*100*QualityFactor(duration), 0, 100), nil
}

// ScoreBreakdown holds one confidence per accent, indexed by Accent.
type ScoreBreakdown [numAccents]float64

func (b ScoreBreakdown) Get(a Accent) float64 {
	if !a.Valid() {
		return 0
	}
	return b[a]
}

// Best returns the highest-scoring accent. Ties go to the accent declared
// first.
func (b ScoreBreakdown) Best() (Accent, float64) {
	best := All[0]
	for _, a := range All[1:] {
		if b[a] > b[best] {
			best = a
		}
	}
	return best, b[best]
}

// Map keys the breakdown by accent name.
func (b ScoreBreakdown) Map() map[string]float64 {
	m := make(map[string]float64, numAccents)
	for _, a := range All {
		m[a.String()] = b[a]
	}
	return m
}

func (b ScoreBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Map())
}

func (b *ScoreBreakdown) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*b = ScoreBreakdown{}
	for name, score := range m {
		a, ok := Parse(name)
		if !ok {
			return fmt.Errorf("unknown accent %q", name)
		}
		b[a] = score
	}
	return nil
}

// Scores evaluates every accent.
func Scores(v features.Vector, transcript string) (ScoreBreakdown, error) {
	var b ScoreBreakdown
	for _, a := range All {
		s, err := AccentScore(a, v, transcript)
		if err != nil {
			return ScoreBreakdown{}, fmt.Errorf("score %s: %w", a, err)
		}
		b[a] = s
	}
	return b, nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
