package todomark

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

var (
	// ErrInvalidPattern is returned when a marker pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrNoCaptureGroup is returned when a pattern (or one of its matches) has no capture
	// group to use as a marker type or range anchor.
	ErrNoCaptureGroup = errors.New("pattern has no capture group")
)

// DefaultMarkerPattern matches the common comment styles followed by a marker keyword. The
// first group captures the marker type, the second the text that follows it.
const DefaultMarkerPattern = `(?:#|//|/\*+|<!--|--|\* @|\{!|\{\{!--|\{\{!) *(TODO|FIXME|FIX|BUG|UGLY|HACK|NOTE|IDEA|REVIEW|DEBUG|OPTIMIZE)(?:\s*\([^)]+\))?:?(?!\w)((?: +[^\n@]*?)(?= *(?:[^:]//|/\*+|<!--|@|--(?!>)|\{!|\{\{!--|\{\{!))|(?: +[^@\n]+)?)`

// PatternOptions controls how a marker pattern is compiled.
type PatternOptions struct {
	Multiline  bool          // ^ and $ match at line boundaries
	IgnoreCase bool          // Case-insensitive matching
	Timeout    time.Duration // Per-match timeout, 0 disables it
}

// Pattern is a compiled marker pattern. Expressions follow ECMAScript syntax, so patterns
// written for editor extensions (lookahead included) work unchanged.
type Pattern struct {
	expr   string
	re     *regexp2.Regexp
	groups int
}

// CompilePattern compiles expr into a Pattern.
func CompilePattern(expr string, opts PatternOptions) (*Pattern, error) {
	options := regexp2.RegexOptions(regexp2.ECMAScript)
	if opts.Multiline {
		options |= regexp2.Multiline
	}
	if opts.IgnoreCase {
		options |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(expr, options)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
	}

	if opts.Timeout > 0 {
		re.MatchTimeout = opts.Timeout
	}

	return &Pattern{
		expr:   expr,
		re:     re,
		groups: len(re.GetGroupNumbers()) - 1,
	}, nil
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.expr
}

// NumGroups returns the number of capture groups, not counting the whole match.
func (p *Pattern) NumGroups() int {
	return p.groups
}
