// Package accent scores a feature vector and transcript against fixed
// per-accent heuristic profiles and assembles the analysis result.
package accent

import "strings"

// Accent is one supported English variant. The declaration order is the
// canonical order used for iteration and tie-breaking.
type Accent int

const (
	American Accent = iota
	British
	Australian
	Canadian
	Indian

	numAccents
)

// Unknown labels the sentinel result.
const Unknown = "Unknown"

// All lists the accents in canonical order.
var All = [numAccents]Accent{American, British, Australian, Canadian, Indian}

var names = [numAccents]string{"American", "British", "Australian", "Canadian", "Indian"}

func (a Accent) String() string {
	if a < 0 || a >= numAccents {
		return Unknown
	}
	return names[a]
}

func (a Accent) Valid() bool { return a >= 0 && a < numAccents }

// Parse maps a case-insensitive accent name to its Accent.
func Parse(name string) (Accent, bool) {
	for _, a := range All {
		if strings.EqualFold(names[a], name) {
			return a, true
		}
	}
	return 0, false
}
