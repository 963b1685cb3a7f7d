package ast

import (
	"strconv"

	gast "github.com/yuin/goldmark/ast"
)

// A FileLink struct represents an @file:// reference in the AST.
type FileLink struct {
	gast.BaseInline
	Path string
	Line int // 0 when the link names the whole file
}

// Dump implements Node.Dump.
func (n *FileLink) Dump(source []byte, level int) {
	m := map[string]string{
		"Path": n.Path,
		"Line": strconv.Itoa(n.Line),
	}
	gast.DumpHelper(n, source, level, m, nil)
}

// KindFileLink is a NodeKind of the FileLink node.
var KindFileLink = gast.NewNodeKind("FileLink")

// Kind implements Node.Kind.
func (n *FileLink) Kind() gast.NodeKind {
	return KindFileLink
}

// NewFileLink returns a new FileLink node.
func NewFileLink(path string, line int) *FileLink {
	return &FileLink{
		Path: path,
		Line: line,
	}
}
