package selector

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// SnapshotCounter counts selector matches against a parsed page snapshot.
// It understands the selector subset the resolver emits:
//
//   - tag: "button", "a"
//   - .class / #id, with tag prefixes: "button.add", "div#main"
//   - tag[attr] and tag[attr=val] (value optionally quoted)
//   - descendant combination separated by spaces
//
// XPath and structural CSS paths are reported as zero matches; they only
// exist as opaque last-resort fallbacks for the driving automation.
type SnapshotCounter struct {
	doc *html.Node
}

// NewSnapshotCounter parses a page HTML snapshot. Parsing is lenient;
// x/net/html never fails on malformed markup short of a reader error.
func NewSnapshotCounter(pageHTML string) (*SnapshotCounter, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}
	return &SnapshotCounter{doc: doc}, nil
}

// Count implements MatchCounter.
func (c *SnapshotCounter) Count(_ context.Context, sel string) (int, error) {
	if isXPath(sel) || isStructuralPath(sel) {
		return 0, nil
	}
	return len(querySelectorAll(c.doc, sel)), nil
}

// querySelectorAll returns all nodes matching a simple CSS selector.
func querySelectorAll(doc *html.Node, sel string) []*html.Node {
	parts := strings.Fields(sel)
	if len(parts) == 0 {
		return nil
	}

	matches := matchSimple(doc, parts[0])
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		for _, parent := range matches {
			next = append(next, matchSimple(parent, parts[i])...)
		}
		matches = next
	}
	return matches
}

// matchSimple finds all nodes matching a single selector part.
func matchSimple(root *html.Node, sel string) []*html.Node {
	m := parseSimpleSelector(sel)
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if matchesSelector(n, m) {
			results = append(results, n)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(root)
	return results
}

type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
}

// parseSimpleSelector parses "tag.class", "#id", "tag[attr=val]", etc.
func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attrPart := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eqIdx := strings.IndexByte(attrPart, '='); eqIdx >= 0 {
			s.attrKey = attrPart[:eqIdx]
			s.attrVal = strings.Trim(attrPart[eqIdx+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = unescapeCSS(sel[idx+1:])
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = unescapeCSS(sel[idx+1:])
		sel = sel[:idx]
	}

	s.tag = sel
	return s
}

// matchesSelector checks if a node matches a parsed simple selector.
func matchesSelector(n *html.Node, s simpleSelector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && getAttr(n, "id") != s.id {
		return false
	}
	if s.class != "" {
		found := false
		for _, c := range strings.Fields(getAttr(n, "class")) {
			if c == s.class {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.attrKey != "" {
		if s.attrVal != "" {
			if getAttr(n, s.attrKey) != s.attrVal {
				return false
			}
		} else if !hasAttr(n, s.attrKey) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func unescapeCSS(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}
