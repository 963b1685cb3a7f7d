package todomark

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// FileLinkPrefix starts every link token in a rendered block.
const FileLinkPrefix = "@file://"

// RenderConfig controls the layout of a rendered block.
type RenderConfig struct {
	Indentation  string // One level of indentation
	GroupByFile  bool   // Emit a file link line before each file's occurrences
	BulletSymbol string // Prefix of every occurrence line, e.g. "☐"
}

// DefaultRenderConfig is the layout used when nothing is configured.
var DefaultRenderConfig = RenderConfig{
	Indentation:  "  ",
	GroupByFile:  false,
	BulletSymbol: "☐",
}

// Render serializes index into its canonical block: marker types in ascending order, files of
// each type in ascending order of normalized path, occurrences in scan order. The block ends with a newline, and
// an empty index renders as the empty string.
func Render(index *MarkerIndex, cfg RenderConfig) string {
	if index == nil {
		return ""
	}

	var lines []string

	for _, markerType := range index.Types() {
		lines = append(lines, markerType+":")

		files, occurrences := normalizedFiles(index, markerType)
		for _, normalized := range files {
			indent := cfg.Indentation
			if cfg.GroupByFile {
				lines = append(lines, cfg.Indentation+FileLink(normalized, 0))
				indent += cfg.Indentation
			}

			for _, occ := range occurrences[normalized] {
				lines = append(lines, indent+cfg.BulletSymbol+" "+
					strings.TrimLeftFunc(occ.LineText, unicode.IsSpace)+" "+
					FileLink(normalized, occ.LineNumber+1))
			}
		}
	}

	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// normalizedFiles groups the occurrences of markerType by normalized path. Keys that normalize
// to the same path are merged in key order.
func normalizedFiles(index *MarkerIndex, markerType string) ([]string, map[string][]Occurrence) {
	occurrences := make(map[string][]Occurrence)
	for _, filePath := range index.Files(markerType) {
		normalized := NormalizePath(filePath)
		occurrences[normalized] = append(occurrences[normalized], index.Occurrences(markerType, filePath)...)
	}
	return slices.Sorted(maps.Keys(occurrences)), occurrences
}

// NormalizePath returns path with exactly one leading slash. Other separators are left as is.
func NormalizePath(path string) string {
	return "/" + strings.TrimLeft(path, "/")
}

// FileLink returns the link token for a path. A positive line adds a 1-based line anchor.
func FileLink(path string, line int) string {
	if line <= 0 {
		return FileLinkPrefix + path
	}
	return FileLinkPrefix + path + "#" + strconv.Itoa(line)
}

// ParseFileLink parses a link token produced by FileLink. line is 0 when the token has no
// anchor.
func ParseFileLink(token string) (path string, line int, ok bool) {
	rest, found := strings.CutPrefix(token, FileLinkPrefix)
	if !found || rest == "" {
		return "", 0, false
	}

	idx := strings.LastIndexByte(rest, '#')
	if idx < 0 {
		return rest, 0, true
	}

	n, err := strconv.Atoi(rest[idx+1:])
	if err != nil || n < 1 {
		return rest, 0, true
	}

	return rest[:idx], n, true
}
