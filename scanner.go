package todomark

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Group is a single capture group of a Match.
type Group struct {
	Text    string // Captured text, empty when the group did not participate
	Index   int    // Rune offset of the capture in the scanned text
	Matched bool   // False when the group did not take part in the match
}

// Match is one match of a Pattern against a string.
type Match struct {
	Index  int     // Rune offset of the match in the scanned text
	Text   string  // The full matched text
	Groups []Group // Capture groups in order, the whole match excluded
}

// FindAll returns every non-overlapping match of the pattern in text, left to right.
// A zero-length match moves the cursor one rune forward, so the scan always terminates.
func (p *Pattern) FindAll(text string) ([]Match, error) {
	runes := []rune(text)

	var matches []Match
	for pos := 0; pos <= len(runes); {
		m, err := p.re.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return matches, fmt.Errorf("scanning with pattern %q: %w", p.expr, err)
		}
		if m == nil {
			break
		}

		matches = append(matches, newMatch(m))

		next := m.Index + m.Length
		if m.Length == 0 {
			next++
		}
		pos = next
	}

	return matches, nil
}

// newMatch copies a regexp2 match into a Match.
func newMatch(m *regexp2.Match) Match {
	groups := m.Groups()

	match := Match{
		Index:  m.Index,
		Text:   m.String(),
		Groups: make([]Group, 0, len(groups)-1),
	}

	for _, g := range groups[1:] {
		match.Groups = append(match.Groups, Group{
			Text:    g.String(),
			Index:   g.Index,
			Matched: len(g.Captures) > 0,
		})
	}

	return match
}
