package journey

import (
	"fmt"
	"strings"
)

// signatureTextLen is how much element text participates in an event's
// dedup signature. Enough to tell buttons apart, short enough to ignore
// trailing copy changes.
const signatureTextLen = 20

// signature identifies a journey by its member events: timestamp plus
// truncated element text per event. Two bundles covering the same events
// collapse to one regardless of how they were derived.
func signature(j *Journey) string {
	var b strings.Builder
	for i := range j.Events {
		ev := &j.Events[i]
		text := ev.Element.Text
		if r := []rune(text); len(r) > signatureTextLen {
			text = string(r[:signatureTextLen])
		}
		fmt.Fprintf(&b, "%d|%s;", ev.Timestamp, text)
	}
	return b.String()
}

// dedupe keeps the first journey per signature. Primary journeys come first
// in the input, so they win over derived bundles covering the same span.
func dedupe(journeys []Journey) []Journey {
	seen := make(map[string]bool, len(journeys))
	out := journeys[:0]
	for i := range journeys {
		sig := signature(&journeys[i])
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, journeys[i])
	}
	return out
}
