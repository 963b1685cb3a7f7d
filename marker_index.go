package todomark

import (
	"maps"
	"slices"
)

// Occurrence is one matched line.
type Occurrence struct {
	LineText   string `yaml:"line"`
	LineNumber int    `yaml:"line_number"` // Zero-based
}

// MarkerIndex groups occurrences by marker type, then by file path. Each file's occurrences
// keep their scan order; the index itself is unordered and Render imposes the order.
type MarkerIndex struct {
	entries map[string]map[string][]Occurrence
}

// NewMarkerIndex returns an empty index.
func NewMarkerIndex() *MarkerIndex {
	return &MarkerIndex{entries: make(map[string]map[string][]Occurrence)}
}

// Add appends an occurrence to the end of the markerType/filePath sequence.
func (mi *MarkerIndex) Add(markerType, filePath string, occ Occurrence) {
	files, ok := mi.entries[markerType]
	if !ok {
		files = make(map[string][]Occurrence)
		mi.entries[markerType] = files
	}
	files[filePath] = append(files[filePath], occ)
}

// Merge appends every sequence of other to the matching sequence of the index.
func (mi *MarkerIndex) Merge(other *MarkerIndex) {
	if other == nil {
		return
	}
	for markerType, files := range other.entries {
		for filePath, occurrences := range files {
			for _, occ := range occurrences {
				mi.Add(markerType, filePath, occ)
			}
		}
	}
}

// Types returns the marker types in ascending order.
func (mi *MarkerIndex) Types() []string {
	return slices.Sorted(maps.Keys(mi.entries))
}

// Files returns the file paths recorded for markerType in ascending order.
func (mi *MarkerIndex) Files(markerType string) []string {
	return slices.Sorted(maps.Keys(mi.entries[markerType]))
}

// Occurrences returns the occurrences of markerType in filePath, in scan order.
func (mi *MarkerIndex) Occurrences(markerType, filePath string) []Occurrence {
	return mi.entries[markerType][filePath]
}

// Len returns the total number of occurrences.
func (mi *MarkerIndex) Len() int {
	total := 0
	for _, files := range mi.entries {
		for _, occurrences := range files {
			total += len(occurrences)
		}
	}
	return total
}

// IsEmpty reports whether the index holds no occurrences.
func (mi *MarkerIndex) IsEmpty() bool {
	return len(mi.entries) == 0
}

// MarshalYAML exposes the nested type/file/occurrence mapping.
func (mi *MarkerIndex) MarshalYAML() (any, error) {
	return mi.entries, nil
}
