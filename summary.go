package todomark

// TypeSummary counts the occurrences of one marker type.
type TypeSummary struct {
	Type        string
	Files       int
	Occurrences int
}

// Summarize returns one summary per marker type, sorted by type.
func Summarize(index *MarkerIndex) []TypeSummary {
	if index == nil {
		return nil
	}

	types := index.Types()
	summaries := make([]TypeSummary, 0, len(types))
	for _, markerType := range types {
		files := index.Files(markerType)
		total := 0
		for _, file := range files {
			total += len(index.Occurrences(markerType, file))
		}
		summaries = append(summaries, TypeSummary{
			Type:        markerType,
			Files:       len(files),
			Occurrences: total,
		})
	}

	return summaries
}
