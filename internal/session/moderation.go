package session

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Monitor scans message text for banned phrases. Matching is whole-word: a
// hit is discarded when the adjacent runes in the original text are letters
// or digits, so "acid" never fires inside "acidity".
type Monitor struct {
	matcher *goahocorasick.Machine
}

func NewMonitor(phrases []string) (*Monitor, error) {
	patterns := make([][]rune, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		patterns = append(patterns, []rune(p))
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Monitor{matcher: m}, nil
}

// Match reports the first banned phrase found as a whole word in text.
func (m *Monitor) Match(text string) (string, bool) {
	runes := []rune(strings.ToLower(text))
	if len(runes) == 0 {
		return "", false
	}
	for _, span := range m.matcher.MultiPatternSearch(runes, false) {
		start := span.Pos
		end := start + len(span.Word)
		if start > 0 && isWordRune(runes[start-1]) {
			continue
		}
		if end < len(runes) && isWordRune(runes[end]) {
			continue
		}
		return string(span.Word), true
	}
	return "", false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
