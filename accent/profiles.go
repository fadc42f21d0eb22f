package accent

import (
	"regexp"
	"slices"
)

// PitchVariation classifies how much a speaker's pitch is expected to move.
type PitchVariation int

const (
	PitchLow PitchVariation = iota
	PitchModerate
	PitchHigh
	PitchVeryHigh
)

func (p PitchVariation) String() string {
	switch p {
	case PitchLow:
		return "low"
	case PitchModerate:
		return "moderate"
	case PitchHigh:
		return "high"
	case PitchVeryHigh:
		return "very_high"
	}
	return "unknown"
}

// Contains reports whether a pitch standard deviation (Hz) falls in this
// class's band. The four bands partition the real line.
func (p PitchVariation) Contains(pitchStd float64) bool {
	switch p {
	case PitchVeryHigh:
		return pitchStd > 80
	case PitchHigh:
		return pitchStd > 50 && pitchStd <= 80
	case PitchModerate:
		return pitchStd > 20 && pitchStd <= 50
	case PitchLow:
		return pitchStd <= 20
	}
	return false
}

// Range is a closed interval.
type Range struct {
	Min, Max float64
}

func (r Range) Contains(x float64) bool { return x >= r.Min && x <= r.Max }
func (r Range) Mid() float64            { return (r.Min + r.Max) / 2 }

// MarkerSet is a group of accent-specific words or phrases worth Weight each
// time one of them occurs in the lower-cased transcript. WholeWord markers must
// match on word boundaries; the rest match as substrings.
type MarkerSet struct {
	Terms     []string
	Weight    float64
	WholeWord bool

	patterns []*regexp.Regexp
}

func (m *MarkerSet) compile() {
	if !m.WholeWord {
		return
	}
	m.patterns = make([]*regexp.Regexp, len(m.Terms))
	for i, t := range m.Terms {
		m.patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}
}

// Profile is the static reference description of one accent.
type Profile struct {
	Accent         Accent
	Rhotic         bool
	VowelPatterns  []string
	Tempo          Range // beats per minute
	PitchVariation PitchVariation
	SpeechRate     Range // speech segments per second
	Keywords       []string
	Markers        MarkerSet
}

// American and British share one keyword list. The duplication is kept as
// found in the reference profiles even though it makes the keyword term
// unable to separate the two.
var sharedKeywords = []string{"can't", "dance", "path", "bath"}

var profiles = [numAccents]Profile{
	American: {
		Accent:         American,
		Rhotic:         true,
		VowelPatterns:  []string{"æ", "ɑː", "oʊ"},
		Tempo:          Range{140, 180},
		PitchVariation: PitchModerate,
		SpeechRate:     Range{4, 6},
		Keywords:       sharedKeywords,
		Markers:        MarkerSet{Terms: []string{"can't"}, Weight: 10, WholeWord: true},
	},
	British: {
		Accent:         British,
		Rhotic:         false,
		VowelPatterns:  []string{"ɑː", "ɔː", "əʊ"},
		Tempo:          Range{120, 160},
		PitchVariation: PitchHigh,
		SpeechRate:     Range{3, 5},
		Keywords:       sharedKeywords,
		Markers:        MarkerSet{Terms: []string{"whilst", "amongst", "colour", "favour", "realise"}, Weight: 8},
	},
	Australian: {
		Accent:         Australian,
		Rhotic:         false,
		VowelPatterns:  []string{"aɪ", "eɪ", "oʊ"},
		Tempo:          Range{130, 170},
		PitchVariation: PitchHigh,
		SpeechRate:     Range{4, 6},
		Keywords:       []string{"day", "mate", "no"},
		Markers:        MarkerSet{Terms: []string{"mate", "bloke", "sheila", "fair dinkum"}, Weight: 10},
	},
	Canadian: {
		Accent:         Canadian,
		Rhotic:         true,
		VowelPatterns:  []string{"aʊ", "oʊ", "æ"},
		Tempo:          Range{135, 175},
		PitchVariation: PitchModerate,
		SpeechRate:     Range{4, 6},
		Keywords:       []string{"about", "house", "out"},
		Markers:        MarkerSet{Terms: []string{"eh", "aboot", "hoose", "oot"}, Weight: 10},
	},
	Indian: {
		Accent:         Indian,
		Rhotic:         true,
		VowelPatterns:  []string{"e", "o", "a"},
		Tempo:          Range{150, 200},
		PitchVariation: PitchVeryHigh,
		SpeechRate:     Range{5, 8},
		Keywords:       []string{"very", "good", "only"},
		Markers:        MarkerSet{Terms: []string{"very good", "only", "what is your good name", "please do the needful"}, Weight: 8},
	},
}

func init() {
	for i := range profiles {
		profiles[i].Markers.compile()
	}
}

// Lookup returns a copy of the profile for a. Invalid accents yield the zero
// Profile and false.
func Lookup(a Accent) (Profile, bool) {
	if !a.Valid() {
		return Profile{}, false
	}
	p := profiles[a]
	p.VowelPatterns = slices.Clone(p.VowelPatterns)
	p.Keywords = slices.Clone(p.Keywords)
	p.Markers.Terms = slices.Clone(p.Markers.Terms)
	return p, true
}
