package textsource

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tsawler/layoutseq/model"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// parseMarkdown returns one block per heading, paragraph, list item, quote
// and code block. Pipe tables become markdown table blocks. Form feeds
// start a new page, as in plain text.
func parseMarkdown(src []byte) []block {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))

	var blocks []block
	for i, pageSrc := range bytes.Split(src, []byte("\f")) {
		w := &mdWalker{src: pageSrc, page: i + 1}
		w.walk(markdown.Parser().Parse(text.NewReader(pageSrc)))
		blocks = append(blocks, w.blocks...)
	}
	return blocks
}

// mdWalker collects content blocks from a goldmark AST
type mdWalker struct {
	src    []byte
	page   int
	blocks []block
}

func (w *mdWalker) add(ct model.ContentType, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.blocks = append(w.blocks, block{page: w.page, contentType: ct, text: text})
}

func (w *mdWalker) walk(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		w.add(model.ContentLine, w.inline(node))
		return

	case *ast.ListItem:
		// Nested lists inside an item are their own blocks
		var parts []string
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if _, ok := c.(*ast.List); !ok {
				parts = append(parts, w.inline(c))
			}
		}
		w.add(model.ContentLine, strings.Join(parts, " "))
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if _, ok := c.(*ast.List); ok {
				w.walk(c)
			}
		}
		return

	case *ast.Blockquote:
		var parts []string
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			parts = append(parts, w.inline(c))
		}
		w.add(model.ContentLine, strings.Join(parts, " "))
		return

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.add(model.ContentLine, w.lines(node))
		return

	case *east.Table:
		if t := w.table(node); len(t.Rows) > 0 {
			w.add(model.ContentTable, t.ToMarkdown())
		}
		return

	case *ast.HTMLBlock, *ast.ThematicBreak:
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c)
	}
}

// inline returns the text of n with markup removed and whitespace collapsed
func (w *mdWalker) inline(n ast.Node) string {
	var b strings.Builder
	w.collect(n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (w *mdWalker) collect(n ast.Node, b *strings.Builder) {
	switch node := n.(type) {
	case *ast.Text:
		b.Write(node.Value(w.src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			b.WriteByte(' ')
		}
		return
	case *ast.String:
		b.Write(node.Value)
		return
	case *ast.AutoLink:
		b.Write(node.Label(w.src))
		return
	case *ast.RawHTML:
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.collect(c, b)
	}
	if n.Type() == ast.TypeBlock {
		b.WriteByte(' ')
	}
}

// lines returns the raw source lines of a code block
func (w *mdWalker) lines(n ast.Node) string {
	var b strings.Builder
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(w.src))
	}
	return b.String()
}

func (w *mdWalker) table(n *east.Table) parsedTable {
	var t parsedTable
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, w.inline(c))
		}
		if _, ok := r.(*east.TableHeader); ok && len(t.Rows) == 0 {
			t.HasHeader = true
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
