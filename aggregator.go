package todomark

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LineSource supplies the lines of a file. ok is false when the file cannot be read as text
// (binary, unreadable, undecodable); such files are skipped rather than reported.
type LineSource interface {
	Lines(ctx context.Context, path string) (lines []string, ok bool)
}

// LineSourceFunc adapts a function to the LineSource interface.
type LineSourceFunc func(ctx context.Context, path string) ([]string, bool)

// Lines implements LineSource.
func (f LineSourceFunc) Lines(ctx context.Context, path string) ([]string, bool) {
	return f(ctx, path)
}

// Aggregator scans files for a marker pattern and builds a MarkerIndex.
type Aggregator struct {
	pattern     *Pattern
	source      LineSource
	concurrency int
	trimTypes   bool
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithConcurrency bounds the number of files scanned at once. Values below 1 use the number
// of CPUs.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		a.concurrency = n
	}
}

// WithTrimmedTypes trims surrounding whitespace from marker types before indexing. Types are
// kept exactly as captured by default.
func WithTrimmedTypes(trim bool) AggregatorOption {
	return func(a *Aggregator) {
		a.trimTypes = trim
	}
}

// NewAggregator creates an Aggregator. The first capture group of pattern names the marker
// type, so a pattern without groups is rejected.
func NewAggregator(pattern *Pattern, source LineSource, opts ...AggregatorOption) (*Aggregator, error) {
	if pattern == nil {
		return nil, fmt.Errorf("%w: no pattern given", ErrInvalidPattern)
	}
	if pattern.NumGroups() < 1 {
		return nil, fmt.Errorf("marker pattern %q: %w", pattern, ErrNoCaptureGroup)
	}

	a := &Aggregator{
		pattern:     pattern,
		source:      source,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Aggregate scans files and returns the resulting index. Files are scanned concurrently; the
// occurrences of each file keep their line order. Cancellation is checked before each file is
// read; a scan cancelled before every file was read returns the partial index together
// with the context error.
func (a *Aggregator) Aggregate(ctx context.Context, files []string) (*MarkerIndex, error) {
	results := make([]*MarkerIndex, len(files))
	scanned := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			idx, err := a.scanFile(gctx, file)
			if err != nil {
				return err
			}
			results[i] = idx
			scanned[i] = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil && slices.Contains(scanned, false) {
		// Files never started because the context was cancelled
		err = ctx.Err()
	}

	index := NewMarkerIndex()
	for _, result := range results {
		index.Merge(result)
	}

	if err != nil {
		return index, fmt.Errorf("aggregating markers: %w", err)
	}

	return index, nil
}

// scanFile builds the index of a single file. A nil index means the file was skipped.
func (a *Aggregator) scanFile(ctx context.Context, path string) (*MarkerIndex, error) {
	lines, ok := a.source.Lines(ctx, path)
	if !ok {
		return nil, nil
	}

	index := NewMarkerIndex()
	for lineNr, line := range lines {
		matches, err := a.pattern.FindAll(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNr+1, err)
		}

		for _, m := range matches {
			typeGroup := m.Groups[0]
			if !typeGroup.Matched {
				continue
			}

			markerType := typeGroup.Text
			if a.trimTypes {
				markerType = strings.TrimSpace(markerType)
			}

			index.Add(markerType, path, Occurrence{LineText: line, LineNumber: lineNr})
		}
	}

	return index, nil
}
