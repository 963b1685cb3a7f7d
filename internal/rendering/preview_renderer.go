package rendering

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/patrickward/todomark/extension"
)

// PreviewRenderer turns a rendered marker block into sanitized HTML.
type PreviewRenderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewPreviewRenderer creates a new PreviewRenderer instance.
func NewPreviewRenderer() *PreviewRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.FileLinks,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &PreviewRenderer{
		md:        md,
		sanitizer: createSanitizerPolicy(),
	}
}

// Render converts block to HTML. Every line of the block is kept on its own line, and file
// link tokens become file:// anchors.
func (pr *PreviewRenderer) Render(block string) (template.HTML, error) {
	if block == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := pr.md.Convert([]byte(block), &buf); err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}

	return template.HTML(pr.sanitizer.Sanitize(buf.String())), nil
}

// createSanitizerPolicy creates a new sanitizer policy for HTML rendering.
func createSanitizerPolicy() *bluemonday.Policy {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowAttrs("class", "id").OnElements("span", "div", "code", "pre", "p", "h1", "h2", "h3", "h4", "h5", "h6")

	// File links point into the local filesystem
	sanitizer.AllowAttrs("class").OnElements("a")
	sanitizer.AllowURLSchemes("file")
	return sanitizer
}
