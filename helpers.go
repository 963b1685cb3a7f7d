package todomark

import (
	"strings"
)

// NormalizeLineEndings converts CRLF and CR line endings to LF.
func NormalizeLineEndings(content string) string {
	// Replace Windows CRLF
	content = strings.ReplaceAll(content, "\r\n", "\n")

	// Replace legacy Mac CR
	content = strings.ReplaceAll(content, "\r", "\n")
	return content
}

// SplitLines splits a string into lines, normalizing line endings. Content ending with a
// newline yields a final empty line, as editors count it.
func SplitLines(content string) []string {
	return strings.Split(NormalizeLineEndings(content), "\n")
}
