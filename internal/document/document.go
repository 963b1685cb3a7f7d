// Package document embeds rendered marker blocks into text documents.
//
// A block lives between a start and an end marker line. Embedding replaces whatever is between
// the markers, so a document can be refreshed any number of times and only changes when the
// block does. Documents without markers get a new marked section.
package document

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/patrickward/todomark"
)

// ErrUnterminatedSection is returned when a document has a start marker but no end marker.
var ErrUnterminatedSection = errors.New("embedded section has no end marker")

// InsertionStrategy defines where a new embedded section goes
type InsertionStrategy int

const (
	// AppendToFile inserts the section at the bottom of the file
	AppendToFile InsertionStrategy = iota
	// PrependToFile inserts the section after the frontmatter and main header
	PrependToFile
)

// Markers delimit the embedded section
type Markers struct {
	Start string
	End   string
}

type Document struct {
	Path    string
	content string
	exists  bool
}

// Open reads the document at path. A missing file opens as an empty document that Save
// creates.
func Open(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Document{Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", path, err)
	}

	return &Document{Path: path, content: string(content), exists: true}, nil
}

// Content returns the current content of the document
func (d *Document) Content() string {
	return d.content
}

// Exists reports whether the document was present on disk when opened
func (d *Document) Exists() bool {
	return d.exists
}

// Embed places block in the document's embedded section, creating the section with strategy
// when there is none. It reports whether the content changed.
func (d *Document) Embed(block string, markers Markers, strategy InsertionStrategy) (bool, error) {
	updated, err := Embed(d.content, block, markers, strategy)
	if err != nil {
		return false, fmt.Errorf("failed to embed into %s: %w", d.Path, err)
	}

	if updated == d.content {
		return false, nil
	}

	d.content = updated
	return true, nil
}

// Save writes the document to disk
func (d *Document) Save() error {
	if err := LockAndWrite(d.Path, []byte(d.content)); err != nil {
		return fmt.Errorf("failed to save document %s: %w", d.Path, err)
	}
	d.exists = true
	return nil
}

// Embed returns content with block placed between the marker lines.
func Embed(content, block string, markers Markers, strategy InsertionStrategy) (string, error) {
	var lines []string
	if content != "" {
		lines = todomark.SplitLines(strings.TrimSuffix(todomark.NormalizeLineEndings(content), "\n"))
	}

	var blockLines []string
	if block != "" {
		blockLines = strings.Split(strings.TrimSuffix(block, "\n"), "\n")
	}

	start, end := -1, -1
	for i, line := range lines {
		normalizedLine := strings.TrimSpace(line)
		if start == -1 && normalizedLine == markers.Start {
			start = i
			continue
		}
		if start != -1 && normalizedLine == markers.End {
			end = i
			break
		}
	}

	var result []string
	switch {
	case start != -1 && end == -1:
		return "", ErrUnterminatedSection
	case start != -1:
		result = make([]string, 0, len(lines)-(end-start)+len(blockLines)+1)
		result = append(result, lines[:start+1]...)
		result = append(result, blockLines...)
		result = append(result, lines[end:]...)
	default:
		log.Printf("No embedded section found; creating one")
		result = createSection(lines, blockLines, markers, strategy)
	}

	return strings.Join(result, "\n") + "\n", nil
}

// createSection adds a new marked section holding blockLines
func createSection(lines, blockLines []string, markers Markers, strategy InsertionStrategy) []string {
	section := make([]string, 0, len(blockLines)+2)
	section = append(section, markers.Start)
	section = append(section, blockLines...)
	section = append(section, markers.End)

	if strategy == PrependToFile {
		insertPos := headerEnd(lines)

		result := make([]string, 0, len(lines)+len(section)+1)
		result = append(result, lines[:insertPos]...)
		result = append(result, section...)
		if insertPos < len(lines) {
			result = append(result, "") // Blank line after section
			result = append(result, lines[insertPos:]...)
		}
		return result
	}

	// Trim trailing blank lines, then keep one blank line before the section
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	result := make([]string, 0, len(lines)+len(section)+1)
	result = append(result, lines...)
	if len(lines) > 0 {
		result = append(result, "")
	}
	return append(result, section...)
}

// headerEnd returns the index of the first line after the frontmatter and the main "# "
// header, skipping the blank lines that follow them.
func headerEnd(lines []string) int {
	insertPos := 0
	if bounds := FindFrontmatter(lines); bounds.Found {
		insertPos = bounds.End
	}

	skipBlank := func() {
		for insertPos < len(lines) && strings.TrimSpace(lines[insertPos]) == "" {
			insertPos++
		}
	}

	skipBlank()
	if insertPos < len(lines) && strings.HasPrefix(lines[insertPos], "# ") {
		insertPos++
		skipBlank()
	}

	return insertPos
}

// FindDocument returns the first candidate that exists as a regular file below the root, in
// the order given.
func FindDocument(rm *todomark.RootManager, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if rm.FileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
