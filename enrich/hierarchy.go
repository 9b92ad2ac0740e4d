package enrich

import (
	"fmt"
	"strings"

	"github.com/mkurahn/wayfind/session"
)

func (x *Extractor) hierarchyContext(ev *session.InteractionEvent) string {
	chain := ev.Page.Ancestors
	frag := x.markdownFragment(ev.Element.HTML, ev.Page.URL)
	if len(chain) == 0 && frag == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("DOM Hierarchy:\n")
	if len(chain) > 0 {
		fmt.Fprintf(&b, "- Path: %s\n", strings.Join(chain, " > "))
		fmt.Fprintf(&b, "- Depth: %d\n", len(chain))
	}
	if frag != "" {
		fmt.Fprintf(&b, "- Fragment:\n%s\n", frag)
	}
	if sib := siblingSummary(ev); sib != "" {
		fmt.Fprintf(&b, "- Siblings: %s\n", sib)
	}
	return strings.TrimRight(b.String(), "\n")
}

// siblingSummary lists same-tag nearby elements, the closest first. These
// act as the sibling set when no full DOM snapshot is available.
func siblingSummary(ev *session.InteractionEvent) string {
	var parts []string
	for _, n := range ev.Element.Nearby {
		if n.Tag != ev.Element.Tag {
			continue
		}
		label := n.Text
		if label == "" {
			label = n.Selector
		}
		parts = append(parts, truncate(label, 40))
		if len(parts) == 4 {
			break
		}
	}
	return strings.Join(parts, "; ")
}

// Design-system prefixes recognized in class names. Recognizing one tells a
// model which component vocabulary the site speaks.
var designSystemPrefixes = []struct {
	prefix string
	name   string
}{
	{"Mui", "Material UI"},
	{"ant-", "Ant Design"},
	{"chakra-", "Chakra UI"},
	{"mantine-", "Mantine"},
	{"bp5-", "Blueprint"},
	{"btn", "Bootstrap"},
	{"v-btn", "Vuetify"},
	{"slds-", "Lightning"},
	{"spectrum-", "Spectrum"},
}

func designSystemContext(ev *session.InteractionEvent) string {
	class := ev.Element.Attr("class")
	if class == "" {
		return ""
	}
	for _, token := range strings.Fields(class) {
		for _, ds := range designSystemPrefixes {
			if strings.HasPrefix(token, ds.prefix) {
				return fmt.Sprintf("Design System: %s (class %q)", ds.name, token)
			}
		}
	}
	return ""
}

func behaviorContext(ev *session.InteractionEvent) string {
	verb := behaviorVerbs[ev.Type]
	if verb == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("Behavior:\n")
	fmt.Fprintf(&b, "- Action: %s", verb)
	if ev.State != nil && len(ev.State.Changes) > 0 {
		fmt.Fprintf(&b, "\n- Effect: %d state change(s)", len(ev.State.Changes))
	}
	if ev.Type == session.EventInput && ev.Element.Value != "" {
		fmt.Fprintf(&b, "\n- Entered: %q", truncate(ev.Element.Value, 60))
	}
	return b.String()
}

var behaviorVerbs = map[session.EventType]string{
	session.EventClick:      "click",
	session.EventInput:      "type",
	session.EventFormSubmit: "submit",
	session.EventFocus:      "focus",
	session.EventKeyPress:   "key press",
	session.EventNavigation: "navigate",
}
