package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/pdfchunk/internal/document"
)

// MarkdownParser handles Markdown files using goldmark. Markup is dropped;
// each top-level block (headings included) becomes one paragraph.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b document.Builder
	title := ""
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := extractText(n, src)
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && title == "" {
			title = t
		}
		b.AddBlock(t)
	}

	if title == "" {
		title = titleFromFilename(filename)
	}
	return &document.Document{
		Title:     title,
		Text:      b.Text(),
		Extractor: "goldmark",
	}, nil
}

// extractText gets the plain text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch node := n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	case *ast.Text:
		buf.Write(node.Segment.Value(src))
		if node.HardLineBreak() || node.SoftLineBreak() {
			buf.WriteByte('\n')
		}
		return buf.String()
	case *ast.String:
		return string(node.Value)
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t := extractText(c, src)
		if c.Type() == ast.TypeBlock && buf.Len() > 0 && t != "" {
			buf.WriteByte('\n')
		}
		buf.WriteString(t)
	}
	if n.Type() == ast.TypeBlock {
		return strings.TrimSpace(buf.String())
	}
	return buf.String()
}
