package todomark

import (
	"strings"
	"unicode/utf8"
)

// MatchRange is a half-open rune range [Start, End) in a scanned string.
type MatchRange struct {
	Start int
	End   int
}

// Len returns the number of runes in the range.
func (r MatchRange) Len() int {
	return r.End - r.Start
}

// ResolveRange returns the range of the last capture group of m. The group is located as the
// first occurrence of its text inside the full match, so a pattern like `(prefix)(body)`
// yields the range of body only. A group whose text lies outside the match uses its own
// offset.
func ResolveRange(m Match) (MatchRange, error) {
	if len(m.Groups) == 0 {
		return MatchRange{}, ErrNoCaptureGroup
	}

	group := m.Groups[len(m.Groups)-1]
	last := group.Text

	var start int
	if idx := strings.Index(m.Text, last); idx >= 0 {
		start = m.Index + utf8.RuneCountInString(m.Text[:idx])
	} else {
		// Captured inside a lookahead, past the end of the match
		start = group.Index
	}

	return MatchRange{
		Start: start,
		End:   start + utf8.RuneCountInString(last),
	}, nil
}

// ResolveRanges resolves the range of every match, stopping at the first failure.
func ResolveRanges(matches []Match) ([]MatchRange, error) {
	ranges := make([]MatchRange, 0, len(matches))
	for _, m := range matches {
		r, err := ResolveRange(m)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
