package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/patrickward/todomark"
)

// OverridesKey is the frontmatter key holding per-document render settings.
const OverridesKey = "todomark"

type FrontmatterBounds struct {
	Start int
	End   int
	Found bool
}

// FindFrontmatter finds the bounds of the frontmatter section in the given lines
func FindFrontmatter(lines []string) FrontmatterBounds {
	if len(lines) == 0 {
		return FrontmatterBounds{}
	}

	// Skip any blank lines at the start
	startIdx := 0
	for startIdx < len(lines) && strings.TrimSpace(lines[startIdx]) == "" {
		startIdx++
	}

	// Return empty bounds if no frontmatter found, i.e., the first non-blank line is not "---"
	if startIdx >= len(lines) || strings.TrimSpace(lines[startIdx]) != "---" {
		return FrontmatterBounds{}
	}

	// Look for the closing frontmatter delimiter
	for i := startIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return FrontmatterBounds{
				Start: startIdx,
				End:   i + 1,
				Found: true,
			}
		}
	}

	// Return empty bounds if no closing delimiter found
	return FrontmatterBounds{}
}

// Overrides are render settings a document sets for itself in its frontmatter:
//
//	---
//	todomark:
//	  indentation: "\t"
//	  group_by_file: true
//	  bullet: "-"
//	---
type Overrides struct {
	Indentation *string
	GroupByFile *bool
	Bullet      *string
}

// Apply returns cfg with the overridden settings replaced.
func (o Overrides) Apply(cfg todomark.RenderConfig) todomark.RenderConfig {
	if o.Indentation != nil {
		cfg.Indentation = *o.Indentation
	}
	if o.GroupByFile != nil {
		cfg.GroupByFile = *o.GroupByFile
	}
	if o.Bullet != nil {
		cfg.BulletSymbol = *o.Bullet
	}
	return cfg
}

// RenderOverrides reads the render overrides from the frontmatter of content. Content without
// frontmatter, or without a todomark key, has no overrides.
func RenderOverrides(content string) (Overrides, error) {
	lines := todomark.SplitLines(content)
	bounds := FindFrontmatter(lines)
	if !bounds.Found {
		return Overrides{}, nil
	}

	frontmatter := strings.Join(lines[bounds.Start:bounds.End], "\n") + "\n"

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	ctx := parser.NewContext()
	var buf bytes.Buffer
	if err := md.Convert([]byte(frontmatter), &buf, parser.WithContext(ctx)); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	metadata, err := meta.TryGet(ctx)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	settings := stringKeys(metadata[OverridesKey])
	if settings == nil {
		return Overrides{}, nil
	}

	var overrides Overrides
	if v, ok := settings["indentation"].(string); ok {
		overrides.Indentation = &v
	}
	if v, ok := settings["group_by_file"].(bool); ok {
		overrides.GroupByFile = &v
	}
	if v, ok := settings["bullet"].(string); ok {
		overrides.Bullet = &v
	}

	return overrides, nil
}

// stringKeys converts a decoded YAML mapping to map[string]any. Nested mappings come back
// from the YAML decoder keyed by any.
func stringKeys(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for key, value := range m {
			if s, ok := key.(string); ok {
				out[s] = value
			}
		}
		return out
	default:
		return nil
	}
}
