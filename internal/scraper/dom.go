package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// matcher selects element nodes while walking a parsed page.
type matcher func(*html.Node) bool

// elem matches a tag with a class selector. A selector with spaces must equal the
// whole class attribute, a single word must be one of the element's classes.
func elem(tag, class string) matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != tag {
			return false
		}
		return class == "" || hasClass(n, class)
	}
}

// withString narrows m to elements whose only text content satisfies pred.
func (m matcher) withString(pred func(string) bool) matcher {
	return func(n *html.Node) bool {
		if !m(n) {
			return false
		}
		s, ok := ownString(n)
		return ok && pred(s)
	}
}

func equals(want string) func(string) bool {
	return func(s string) bool { return strings.TrimSpace(s) == want }
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func hasClass(n *html.Node, class string) bool {
	attr, ok := attribute(n, "class")
	if !ok {
		return false
	}
	if strings.ContainsAny(class, " \t") {
		return attr == class
	}
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

func attribute(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// ownString returns the text of an element that wraps exactly one string,
// possibly through a chain of single-child elements.
func ownString(n *html.Node) (string, bool) {
	for {
		c := n.FirstChild
		if c == nil || c.NextSibling != nil {
			return "", false
		}
		if c.Type == html.TextNode {
			return c.Data, true
		}
		if c.Type != html.ElementNode {
			return "", false
		}
		n = c
	}
}

// next returns the node following n in document order.
func next(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// findNext returns the first element after from, in document order, that m
// accepts. Descendants of from are visited first.
func findNext(from *html.Node, m matcher) *html.Node {
	if from == nil {
		return nil
	}
	for n := next(from); n != nil; n = next(n) {
		if n.Type == html.ElementNode && m(n) {
			return n
		}
	}
	return nil
}

// findFirst is findNext from the document root, including the root.
func findFirst(doc *goquery.Document, m matcher) *html.Node {
	if len(doc.Nodes) == 0 {
		return nil
	}
	root := doc.Nodes[0]
	if root.Type == html.ElementNode && m(root) {
		return root
	}
	return findNext(root, m)
}

func findAll(doc *goquery.Document, m matcher) []*html.Node {
	var out []*html.Node
	for n := findFirst(doc, m); n != nil; n = findNext(n, m) {
		out = append(out, n)
	}
	return out
}

// strippedText joins every descendant text fragment after trimming it,
// dropping fragments that trim to nothing.
func strippedText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// within returns the descendants of root that m accepts, in document order.
func within(root *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && m(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func firstWithin(root *html.Node, m matcher) *html.Node {
	if found := within(root, m); len(found) > 0 {
		return found[0]
	}
	return nil
}
