package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkurahn/wayfind/session"
)

func performanceContext(ev *session.InteractionEvent) string {
	t := ev.Technical
	if t == nil || (t.LoadTimeMs == 0 && t.RequestCount == 0) {
		return ""
	}
	var b strings.Builder
	b.WriteString("Performance:\n")
	if t.LoadTimeMs > 0 {
		fmt.Fprintf(&b, "- Load Time: %dms\n", t.LoadTimeMs)
	}
	if t.RequestCount > 0 {
		fmt.Fprintf(&b, "- Requests: %d\n", t.RequestCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

func timingContext(ev *session.InteractionEvent) string {
	if ev.Timestamp == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Timing:\n")
	fmt.Fprintf(&b, "- At: %s", ev.Time().Format(time.RFC3339))
	if ev.User != nil && ev.User.SessionAge > 0 {
		fmt.Fprintf(&b, "\n- Session Age: %s", ev.User.SessionAge.Round(time.Second))
	}
	return b.String()
}

func networkContext(ev *session.InteractionEvent) string {
	t := ev.Technical
	if t == nil || t.NetworkState == "" {
		return ""
	}
	return "Network State: " + t.NetworkState
}

func errorContext(ev *session.InteractionEvent) string {
	t := ev.Technical
	if t == nil || len(t.Errors) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Page Errors:\n")
	for _, e := range t.Errors {
		fmt.Fprintf(&b, "- %s\n", truncate(e, 120))
	}
	return strings.TrimRight(b.String(), "\n")
}

func analyticsContext(ev *session.InteractionEvent) string {
	t := ev.Technical
	if t == nil || len(t.Analytics) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Analytics:\n")
	for _, k := range sortedKeys(t.Analytics) {
		fmt.Fprintf(&b, "- %s: %s\n", k, truncate(t.Analytics[k], 80))
	}
	return strings.TrimRight(b.String(), "\n")
}

func seoContext(ev *session.InteractionEvent) string {
	t := ev.Technical
	if t == nil || len(t.SEO) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("SEO Meta:\n")
	for _, k := range sortedKeys(t.SEO) {
		fmt.Fprintf(&b, "- %s: %s\n", k, truncate(t.SEO[k], 120))
	}
	return strings.TrimRight(b.String(), "\n")
}

func userContext(ev *session.InteractionEvent) string {
	u := ev.User
	if u == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("User Context:\n")
	fmt.Fprintf(&b, "- Device: %s\n", orUnknown(u.Device))
	fmt.Fprintf(&b, "- Returning Visitor: %s", yesNo(u.Returning))
	return b.String()
}
