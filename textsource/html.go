package textsource

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/layoutseq/model"
)

// htmlWalker collects content blocks from a parsed HTML tree
type htmlWalker struct {
	exclude *exclusionChecker
	blocks  []block
}

func parseHTML(r io.Reader, mode NavigationMode) ([]block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	w := &htmlWalker{exclude: newExclusionChecker(mode, doc)}
	w.walk(body)
	return w.blocks, nil
}

func (w *htmlWalker) add(ct model.ContentType, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.blocks = append(w.blocks, block{page: 1, contentType: ct, text: text})
}

// walk recursively processes DOM nodes
func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) || w.exclude.shouldExclude(n) {
			return
		}

		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "li", "dt", "dd", "figcaption", "caption":
			w.add(model.ContentLine, textContent(n))
			// Nested lists inside an item are their own blocks
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
					w.walk(c)
				}
			}
			return

		case "p", "div", "section", "article", "main", "header", "footer", "nav", "aside":
			if !isBlockContainer(n) {
				w.add(model.ContentLine, textContent(n))
				return
			}

		case "pre":
			w.add(model.ContentLine, rawText(n))
			return

		case "table":
			if t := parseTable(n); len(t.Rows) > 0 {
				w.add(model.ContentTable, t.ToMarkdown())
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// shouldSkipElement returns true if the element never carries content
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "head", "svg", "iframe":
		return true
	}
	return false
}

// isBlockContainer returns true if the element has block-level children
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "p", "div", "table", "ul", "ol", "dl", "pre", "blockquote", "section", "article",
			"h1", "h2", "h3", "h4", "h5", "h6", "header", "footer", "nav", "aside", "figure":
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}

// textContent returns the whitespace-collapsed text below n, leaving out
// nested lists
func textContent(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b, true)
	return strings.Join(strings.Fields(b.String()), " ")
}

// rawText returns the text below n with whitespace preserved
func rawText(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b, false)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder, skipLists bool) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if shouldSkipElement(n.Data) {
			return
		}
		if skipLists && (n.Data == "ul" || n.Data == "ol") {
			return
		}
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b, skipLists)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
