package extension

import (
	"html"
	"net/url"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/patrickward/todomark"
	"github.com/patrickward/todomark/extension/ast"
)

var fileLinkRegexp = regexp.MustCompile(`^` + regexp.QuoteMeta(todomark.FileLinkPrefix) + `[^\s#]+(?:#\d+)?`)

type fileLinkParser struct{}

// NewFileLinkParser creates a parser for @file:// references.
func NewFileLinkParser() parser.InlineParser {
	return &fileLinkParser{}
}

func (p *fileLinkParser) Trigger() []byte {
	return []byte{'@'}
}

func (p *fileLinkParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, _ := block.PeekLine()
	m := fileLinkRegexp.FindIndex(line)
	if m == nil {
		return nil
	}

	path, lineNumber, ok := todomark.ParseFileLink(string(line[:m[1]]))
	if !ok {
		return nil
	}

	block.Advance(m[1])
	return ast.NewFileLink(path, lineNumber)
}

// FileLinkHTMLRenderer renders FileLink nodes as file:// anchors.
type FileLinkHTMLRenderer struct {
	ghtml.Config
}

// NewFileLinkHTMLRenderer creates a new FileLinkHTMLRenderer.
func NewFileLinkHTMLRenderer(opts ...ghtml.Option) renderer.NodeRenderer {
	r := &FileLinkHTMLRenderer{
		Config: ghtml.NewConfig(),
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *FileLinkHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFileLink, r.renderFileLink)
}

func (r *FileLinkHTMLRenderer) renderFileLink(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}

	n := node.(*ast.FileLink)

	href := (&url.URL{Scheme: "file", Path: n.Path}).String()
	label := n.Path
	if n.Line > 0 {
		href += "#L" + strconv.Itoa(n.Line)
		label += ":" + strconv.Itoa(n.Line)
	}

	_, _ = w.WriteString(`<a class="file-link" href="` + html.EscapeString(href) + `">`)
	_, _ = w.WriteString(html.EscapeString(label))
	_, _ = w.WriteString(`</a>`)

	return gast.WalkContinue, nil
}

type fileLinkExtension struct{}

// FileLinks is a Goldmark extension turning @file:// references into links.
var FileLinks = &fileLinkExtension{}

func (e *fileLinkExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewFileLinkParser(), 200),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewFileLinkHTMLRenderer(), 500),
	))
}
