package todomark_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickward/todomark"
)

func exampleIndex() *todomark.MarkerIndex {
	index := todomark.NewMarkerIndex()
	index.Add("TODO", "a.txt", todomark.Occurrence{LineText: "TODO: buy milk", LineNumber: 3})
	index.Add("FIXME", "b.txt", todomark.Occurrence{LineText: "FIXME: leak", LineNumber: 0})
	return index
}

func TestRender_Example(t *testing.T) {
	t.Parallel()

	cfg := todomark.RenderConfig{Indentation: "\t", GroupByFile: false, BulletSymbol: "☐"}
	want := "FIXME:\n" +
		"\t☐ FIXME: leak @file:///b.txt#1\n" +
		"TODO:\n" +
		"\t☐ TODO: buy milk @file:///a.txt#4\n"

	assert.Equal(t, want, todomark.Render(exampleIndex(), cfg))
}

func TestRender_GroupByFile(t *testing.T) {
	t.Parallel()

	index := todomark.NewMarkerIndex()
	index.Add("TODO", "src/b.go", todomark.Occurrence{LineText: "\t// TODO: second", LineNumber: 9})
	index.Add("TODO", "src/b.go", todomark.Occurrence{LineText: "  // TODO: third", LineNumber: 12})
	index.Add("TODO", "/src/a.go", todomark.Occurrence{LineText: "// TODO: first", LineNumber: 0})

	cfg := todomark.RenderConfig{Indentation: "  ", GroupByFile: true, BulletSymbol: "-"}
	want := "TODO:\n" +
		"  @file:///src/a.go\n" +
		"    - // TODO: first @file:///src/a.go#1\n" +
		"  @file:///src/b.go\n" +
		"    - // TODO: second @file:///src/b.go#10\n" +
		"    - // TODO: third @file:///src/b.go#13\n"

	assert.Equal(t, want, todomark.Render(index, cfg))
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", todomark.Render(todomark.NewMarkerIndex(), todomark.DefaultRenderConfig))
	assert.Equal(t, "", todomark.Render(nil, todomark.DefaultRenderConfig))
}

func TestRender_DeterministicAcrossInsertionOrder(t *testing.T) {
	t.Parallel()

	occ := func(n int) todomark.Occurrence {
		return todomark.Occurrence{LineText: "TODO: x", LineNumber: n}
	}

	forward := todomark.NewMarkerIndex()
	forward.Add("TODO", "a.txt", occ(1))
	forward.Add("NOTE", "b.txt", occ(2))
	forward.Add("TODO", "c.txt", occ(3))

	backward := todomark.NewMarkerIndex()
	backward.Add("TODO", "c.txt", occ(3))
	backward.Add("NOTE", "b.txt", occ(2))
	backward.Add("TODO", "a.txt", occ(1))

	cfg := todomark.DefaultRenderConfig
	first := todomark.Render(forward, cfg)
	assert.Equal(t, first, todomark.Render(forward, cfg))
	assert.Equal(t, first, todomark.Render(backward, cfg))

	lines := strings.Split(strings.TrimSuffix(first, "\n"), "\n")
	assert.Equal(t, "NOTE:", lines[0])
	assert.Equal(t, "TODO:", lines[2])
	assert.Contains(t, lines[3], "@file:///a.txt#2")
	assert.Contains(t, lines[4], "@file:///c.txt#4")
}

func TestRender_SortsAndMergesNormalizedPaths(t *testing.T) {
	t.Parallel()

	index := todomark.NewMarkerIndex()
	index.Add("TODO", "//z.go", todomark.Occurrence{LineText: "TODO: z", LineNumber: 0})
	index.Add("TODO", "/src/a.go", todomark.Occurrence{LineText: "TODO: one", LineNumber: 1})
	index.Add("TODO", "src/a.go", todomark.Occurrence{LineText: "TODO: two", LineNumber: 4})

	cfg := todomark.DefaultRenderConfig
	cfg.GroupByFile = true

	want := "TODO:\n" +
		"  @file:///src/a.go\n" +
		"    ☐ TODO: one @file:///src/a.go#2\n" +
		"    ☐ TODO: two @file:///src/a.go#5\n" +
		"  @file:///z.go\n" +
		"    ☐ TODO: z @file:///z.go#1\n"
	assert.Equal(t, want, todomark.Render(index, cfg))
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"sub/dir//note.txt": "/sub/dir//note.txt",
		"/a.txt":            "/a.txt",
		"///a.txt":          "/a.txt",
		"":                  "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, todomark.NormalizePath(in), in)
	}

	index := todomark.NewMarkerIndex()
	index.Add("TODO", "sub/dir//note.txt", todomark.Occurrence{LineText: "TODO", LineNumber: 0})
	assert.Contains(t, todomark.Render(index, todomark.DefaultRenderConfig), "@file:///sub/dir//note.txt#1")
}

func TestFileLink(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "@file:///a.txt", todomark.FileLink("/a.txt", 0))
	assert.Equal(t, "@file:///a.txt#12", todomark.FileLink("/a.txt", 12))
}

func TestParseFileLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token    string
		wantPath string
		wantLine int
		wantOK   bool
	}{
		{token: "@file:///a.txt#4", wantPath: "/a.txt", wantLine: 4, wantOK: true},
		{token: "@file:///sub/dir//note.txt", wantPath: "/sub/dir//note.txt", wantOK: true},
		{token: "@file:///notes#draft.md#2", wantPath: "/notes#draft.md", wantLine: 2, wantOK: true},
		{token: "@file:///a.txt#top", wantPath: "/a.txt#top", wantOK: true},
		{token: "@file://", wantOK: false},
		{token: "file:///a.txt#4", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			path, line, ok := todomark.ParseFileLink(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantLine, line)
		})
	}

	// Round trip through FileLink
	path, line, ok := todomark.ParseFileLink(todomark.FileLink("/x/y.go", 42))
	assert.True(t, ok)
	assert.Equal(t, "/x/y.go", path)
	assert.Equal(t, 42, line)
}
