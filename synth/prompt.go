package synth

import (
	"fmt"
	"strings"

	"github.com/mkurahn/wayfind/enrich"
	"github.com/mkurahn/wayfind/selector"
	"github.com/mkurahn/wayfind/session"
)

// basePrompt assembles the prompt shared by all of an event's examples:
// task framing, journey progress, page, element, selector availability,
// spatial and business context.
func (s *Synthesizer) basePrompt(ev *session.InteractionEvent, res *selector.Resolution, c *enrich.Context, meta *JourneyMetadata, step int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", meta.Intent)
	if meta.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", meta.Goal)
	}
	fmt.Fprintf(&b, "Journey Progress: step %d of %d", step, meta.Steps)
	if len(meta.Stages) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(meta.Stages, " > "))
	}
	b.WriteString("\n\n")

	b.WriteString(c.Page)
	b.WriteString("\n\n")
	b.WriteString(c.Element)

	if res.Best != "" {
		fmt.Fprintf(&b, "\n\nSelector: %s (reliability %.2f)", res.Best, res.Reliability)
		if len(res.Backups) > 0 {
			fmt.Fprintf(&b, "\nFallbacks: %s", strings.Join(res.Backups, ", "))
		}
	}
	if c.Spatial != "" {
		b.WriteString("\n\n")
		b.WriteString(c.Spatial)
	}
	if c.Business != "" {
		b.WriteString("\n\n")
		b.WriteString(c.Business)
	}

	b.WriteString("\n\nWhat is the next action?")
	return b.String()
}

// stepLine renders one step of a journey flow listing.
func stepLine(n int, ev *session.InteractionEvent) string {
	label := ev.Element.Text
	if label == "" {
		label = ev.Element.Tag
	}
	line := fmt.Sprintf("%d. %s %q", n, actionVerb(ev.Type), clip(label, 60))
	if pt := ev.Page.PageType; pt != "" {
		line += " on " + pt + " page"
	}
	if st := ev.FunnelStage(); st != "" {
		line += " [" + st + "]"
	}
	return line
}
