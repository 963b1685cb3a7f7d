package extension_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/patrickward/todomark/extension"
	"github.com/patrickward/todomark/extension/ast"
)

func TestFileLinks_Parse(t *testing.T) {
	t.Parallel()

	md := goldmark.New(goldmark.WithExtensions(extension.FileLinks))
	source := []byte("see @file:///src/main.go#12 and @file:///README.md or user@example.com")

	doc := md.Parser().Parse(text.NewReader(source))

	var links []*ast.FileLink
	err := gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if link, ok := n.(*ast.FileLink); ok && entering {
			links = append(links, link)
		}
		return gast.WalkContinue, nil
	})
	require.NoError(t, err)

	require.Len(t, links, 2)
	assert.Equal(t, "/src/main.go", links[0].Path)
	assert.Equal(t, 12, links[0].Line)
	assert.Equal(t, "/README.md", links[1].Path)
	assert.Equal(t, 0, links[1].Line)
}

func TestFileLinks_Render(t *testing.T) {
	t.Parallel()

	md := goldmark.New(goldmark.WithExtensions(extension.FileLinks))

	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte("fix @file:///a b.go#3 @file:///x.go#7"), &buf))

	out := buf.String()
	assert.Contains(t, out, `<a class="file-link" href="file:///x.go#L7">/x.go:7</a>`)
	// A path is cut at the first space
	assert.Contains(t, out, `<a class="file-link" href="file:///a">/a</a> b.go#3`)
}
