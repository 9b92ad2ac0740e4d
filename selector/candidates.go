package selector

import (
	"fmt"
	"strings"

	"github.com/mkurahn/wayfind/session"
)

// Input is everything Resolve needs for one element: the element itself,
// the capture agent's selector set, and an optional match counter for the
// page the element lives on.
type Input struct {
	Element session.Element
	Set     *session.SelectorSet
	Counter MatchCounter
}

// candidates builds the ranked candidate list for an element. Semantic
// candidates are derived from the element's attributes; the capture agent's
// own candidates are merged in, with XPath and structural CSS paths forced
// to the last-resort rank.
func (r *Resolver) candidates(in Input) []candidate {
	var out []candidate
	seen := make(map[string]bool)
	add := func(sel string, rank int) {
		if sel == "" || seen[sel] {
			return
		}
		seen[sel] = true
		out = append(out, candidate{sel: sel, rank: rank})
	}

	el := in.Element

	if id := el.Attr("id"); id != "" && IsStableToken(id) {
		add("#"+cssEscape(id), rankID)
	}
	for _, attr := range r.cfg.TestAttributes {
		if v := el.Attr(attr); v != "" {
			add(fmt.Sprintf("[%s=%q]", attr, v), rankTestAttr)
		}
	}
	if label := el.Attr("aria-label"); label != "" {
		add(fmt.Sprintf("[aria-label=%q]", label), rankAria)
	}
	if name := el.Attr("name"); name != "" {
		add(fmt.Sprintf("%s[name=%q]", el.Tag, name), rankName)
	}
	if cls := firstStableClass(el.Attr("class")); cls != "" && el.Tag != "" {
		add(el.Tag+"."+cssEscape(cls), rankStableClass)
	}
	if sel := tagAttrSelector(el); sel != "" {
		add(sel, rankTagAttr)
	}
	if el.Tag != "" {
		add(el.Tag, rankTag)
	}

	// Capture-agent candidates. Path-style selectors are fallbacks no matter
	// how reliable they look; everything else slots in as tag+attr tier.
	for _, sel := range in.Set.Candidates() {
		if isXPath(sel) || isStructuralPath(sel) {
			add(sel, rankStructural)
			continue
		}
		add(sel, rankFor(sel, el))
	}

	return out
}

// rankFor classifies a capture-agent candidate into a preference tier based
// on its shape.
func rankFor(sel string, el session.Element) int {
	switch {
	case strings.HasPrefix(sel, "#"):
		return rankID
	case strings.HasPrefix(sel, "[data-"):
		return rankTestAttr
	case strings.HasPrefix(sel, "[aria-"):
		return rankAria
	case strings.Contains(sel, "[name="):
		return rankName
	case strings.Contains(sel, "."):
		if cls := classFromSelector(sel); cls != "" && !IsStableToken(cls) {
			return rankTag
		}
		return rankStableClass
	case strings.Contains(sel, "["):
		return rankTagAttr
	case sel == el.Tag:
		return rankTag
	default:
		return rankTagAttr
	}
}

// tagAttrSelector builds a structural tag[attr=val] selector from the first
// distinguishing attribute the element carries.
func tagAttrSelector(el session.Element) string {
	if el.Tag == "" {
		return ""
	}
	for _, attr := range []string{"type", "role", "href", "placeholder", "title", "alt"} {
		if v := el.Attr(attr); v != "" {
			return fmt.Sprintf("%s[%s=%q]", el.Tag, attr, v)
		}
	}
	return ""
}

func classFromSelector(sel string) string {
	idx := strings.IndexByte(sel, '.')
	if idx < 0 {
		return ""
	}
	cls := sel[idx+1:]
	if next := strings.IndexAny(cls, ".:[ >"); next >= 0 {
		cls = cls[:next]
	}
	return cls
}

// cssEscape escapes the characters that commonly break identifier selectors.
// Full CSS.escape semantics are not needed for capture-agent identifiers.
func cssEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ':', '.', '[', ']', '#', '(', ')', '>', '+', '~', ' ':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
