package accent

import "strings"

const (
	keywordWeight = 5.0
	textScoreCap  = 100.0
)

// TextScore rates how strongly a transcript reads like accent a, 0-100. Each
// profile keyword found in the lower-cased text adds keywordWeight; each
// accent marker found adds the marker weight. Matching is by substring unless
// the marker set asks for whole words.
func TextScore(a Accent, transcript string) float64 {
	p, ok := Lookup(a)
	if !ok || transcript == "" {
		return 0
	}
	text := strings.ToLower(transcript)

	score := 0.0
	for _, kw := range p.Keywords {
		if strings.Contains(text, kw) {
			score += keywordWeight
		}
	}

	m := profiles[a].Markers
	for i, term := range m.Terms {
		var hit bool
		if m.WholeWord {
			hit = m.patterns[i].MatchString(text)
		} else {
			hit = strings.Contains(text, term)
		}
		if hit {
			score += m.Weight
		}
	}
	return clamp(score, 0, textScoreCap)
}
