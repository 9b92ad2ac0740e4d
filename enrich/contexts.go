package enrich

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mkurahn/wayfind/session"
)

func (x *Extractor) pageContext(ev *session.InteractionEvent) string {
	var b strings.Builder
	b.WriteString("Page Context:\n")
	fmt.Fprintf(&b, "- URL: %s\n", orUnknown(ev.Page.URL))
	fmt.Fprintf(&b, "- Title: %s\n", orUnknown(ev.Page.Title))
	fmt.Fprintf(&b, "- Page Type: %s", orUnknown(ev.Page.PageType))
	return b.String()
}

func (x *Extractor) elementContext(ev *session.InteractionEvent) string {
	el := ev.Element
	var b strings.Builder
	b.WriteString("Target Element:\n")
	fmt.Fprintf(&b, "- Tag: %s\n", orUnknown(el.Tag))
	if el.Text != "" {
		fmt.Fprintf(&b, "- Text: %q\n", truncate(el.Text, 120))
	}
	if el.Value != "" {
		fmt.Fprintf(&b, "- Value: %q\n", truncate(el.Value, 120))
	}
	for _, k := range sortedKeys(el.Attributes) {
		fmt.Fprintf(&b, "- [%s]: %s\n", k, truncate(el.Attributes[k], 80))
	}
	cx, cy := el.Box.Center()
	fmt.Fprintf(&b, "- Position: (%.0f, %.0f), %.0fx%.0f px", cx, cy, el.Box.Width, el.Box.Height)
	return b.String()
}

func (x *Extractor) spatialContext(ev *session.InteractionEvent) string {
	nearby := ev.Element.Nearby
	if len(nearby) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Nearby Elements:\n")
	for _, n := range nearby {
		label := n.Text
		if label == "" {
			label = n.Selector
		}
		fmt.Fprintf(&b, "- %s %q, %.0fpx %s\n", orUnknown(n.Tag), truncate(label, 60), n.Distance, orUnknown(n.Direction))
	}
	return strings.TrimRight(b.String(), "\n")
}

func rawBusinessContext(ev *session.InteractionEvent) string {
	biz := ev.Business
	if biz == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Business Context:\n")
	writeIf(&b, "Product", biz.ProductName)
	writeIf(&b, "Category", biz.Category)
	writeIf(&b, "Price", biz.Price)
	writeIf(&b, "Funnel Stage", biz.FunnelStage)
	writeIf(&b, "Conversion Goal", biz.ConversionGoal)
	out := strings.TrimRight(b.String(), "\n")
	if out == "Business Context:" {
		return ""
	}
	return out
}

func visualContext(ev *session.InteractionEvent) string {
	v := ev.Visual
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Visual Context:\n")
	if v.ViewportWidth > 0 && v.ViewportHeight > 0 {
		fmt.Fprintf(&b, "- Viewport: %dx%d\n", v.ViewportWidth, v.ViewportHeight)
	}
	fmt.Fprintf(&b, "- Scroll: (%d, %d)\n", v.ScrollX, v.ScrollY)
	fmt.Fprintf(&b, "- Visible: %s\n", yesNo(v.Visible))
	fmt.Fprintf(&b, "- Above Fold: %s", yesNo(v.AboveFold))
	return b.String()
}

func accessibilityContext(ev *session.InteractionEvent) string {
	a := ev.Accessibility
	if a == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Accessibility:\n")
	writeIf(&b, "Role", a.Role)
	writeIf(&b, "Label", a.Label)
	writeIf(&b, "Description", a.Described)
	if a.TabIndex != 0 {
		fmt.Fprintf(&b, "- Tab Index: %d\n", a.TabIndex)
	}
	fmt.Fprintf(&b, "- Focusable: %s", yesNo(a.Focusable))
	return b.String()
}

func stateContext(ev *session.InteractionEvent) string {
	st := ev.State
	if st == nil || len(st.Changes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("State Changes:\n")
	for _, k := range sortedKeys(st.Changes) {
		fmt.Fprintf(&b, "- %s: %s\n", k, truncate(st.Changes[k], 80))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formContext(ev *session.InteractionEvent) string {
	st := ev.State
	if st == nil || len(st.FormState) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Form State:\n")
	for _, k := range sortedKeys(st.FormState) {
		fmt.Fprintf(&b, "- %s = %s\n", k, truncate(st.FormState[k], 80))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeIf(b *strings.Builder, label, val string) {
	if val != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, val)
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
