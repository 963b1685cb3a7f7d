package todomark

import (
	"context"
)

// Engine ties the aggregator and renderer together behind a single call.
type Engine struct {
	aggregator *Aggregator
}

// NewEngine creates an Engine that scans with pattern and reads files through source.
func NewEngine(pattern *Pattern, source LineSource, opts ...AggregatorOption) (*Engine, error) {
	aggregator, err := NewAggregator(pattern, source, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{aggregator: aggregator}, nil
}

// Index scans files and returns the marker index.
func (e *Engine) Index(ctx context.Context, files []string) (*MarkerIndex, error) {
	return e.aggregator.Aggregate(ctx, files)
}

// RenderMarkerBlock scans files and renders the canonical block. When the scan is cancelled
// the block of the partial index is returned along with the error; the caller decides whether
// to use it.
func (e *Engine) RenderMarkerBlock(ctx context.Context, files []string, cfg RenderConfig) (string, error) {
	index, err := e.aggregator.Aggregate(ctx, files)
	return Render(index, cfg), err
}
