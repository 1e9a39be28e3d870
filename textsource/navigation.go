package textsource

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// navigationPattern matches class/id values that indicate navigation or
// boilerplate content
var navigationPattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// exclusionChecker decides which elements are boilerplate
type exclusionChecker struct {
	level           int
	bodyNode        *html.Node
	topLevelWrapper *html.Node
}

func newExclusionChecker(mode NavigationMode, doc *html.Node) *exclusionChecker {
	ec := &exclusionChecker{level: mode.level()}
	ec.bodyNode = findElement(doc, "body")
	if ec.bodyNode == nil {
		ec.bodyNode = doc
	}
	ec.topLevelWrapper = detectTopLevelWrapper(ec.bodyNode)
	return ec
}

// detectTopLevelWrapper finds a single structural wrapper element if one
// exists, as in <body><div id="wrapper">...</div></body>
func detectTopLevelWrapper(body *html.Node) *html.Node {
	var wrapper *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "div", "main":
			if wrapper != nil {
				return nil
			}
			wrapper = c
		case "script", "style", "noscript", "template":
		default:
			return nil
		}
	}
	return wrapper
}

func (ec *exclusionChecker) shouldExclude(n *html.Node) bool {
	if n.Type != html.ElementNode || ec.level == 0 {
		return false
	}
	if ec.explicit(n) {
		return true
	}
	if ec.level >= 2 && ec.byPattern(n) {
		return true
	}
	return ec.level >= 3 && ec.byLinkDensity(n)
}

// explicit checks semantic HTML5 elements and ARIA roles
func (ec *exclusionChecker) explicit(n *html.Node) bool {
	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		return ec.isTopLevel(n)
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return ec.isTopLevel(n)
	}
	return false
}

// isTopLevel returns true if n is a direct child of body or of the single
// top-level wrapper
func (ec *exclusionChecker) isTopLevel(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	return parent == ec.bodyNode || (ec.topLevelWrapper != nil && parent == ec.topLevelWrapper)
}

func (ec *exclusionChecker) byPattern(n *html.Node) bool {
	if class := getAttr(n, "class"); class != "" && navigationPattern.MatchString(class) {
		return true
	}
	id := getAttr(n, "id")
	return id != "" && navigationPattern.MatchString(id)
}

// byLinkDensity flags block containers where more than 60% of the text sits
// inside at least four links
func (ec *exclusionChecker) byLinkDensity(n *html.Node) bool {
	switch n.Data {
	case "div", "section", "ul", "ol":
	default:
		return false
	}

	total := textLength(n)
	if total == 0 {
		return false
	}
	density := float64(linkTextLength(n)) / float64(total)
	return density > 0.6 && countLinks(n) >= 4
}

func textLength(n *html.Node) int {
	if n.Type == html.TextNode {
		return len(strings.TrimSpace(n.Data))
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLength(c)
	}
	return total
}

func linkTextLength(n *html.Node) int {
	if n.Type == html.ElementNode && n.Data == "a" {
		return textLength(n)
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += linkTextLength(c)
	}
	return total
}

func countLinks(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == "a" {
		count = 1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countLinks(c)
	}
	return count
}
