// Package markdown turns post bodies into static HTML
package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Document is a parsed markdown body. Root may be nil for renderers that do
// not build a tree.
type Document struct {
	Source []byte
	Root   ast.Node
}

// Renderer converts markdown into a document tree and the tree into markup
type Renderer interface {
	Parse(body string) (*Document, error)
	RenderStatic(doc *Document) (string, error)
}

// Goldmark renders CommonMark with GitHub flavoured extensions
type Goldmark struct {
	md goldmark.Markdown
}

func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Posts are written by the site owner, raw HTML is allowed through
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (g *Goldmark) Parse(body string) (*Document, error) {
	source := []byte(body)
	root := g.md.Parser().Parse(text.NewReader(source))
	if root == nil {
		return nil, errors.New("markdown parser returned no document")
	}
	return &Document{Source: source, Root: root}, nil
}

func (g *Goldmark) RenderStatic(doc *Document) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", errors.New("cannot render an empty document")
	}

	var buf bytes.Buffer
	if err := g.md.Renderer().Render(&buf, doc.Source, doc.Root); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

var _ Renderer = (*Goldmark)(nil)
