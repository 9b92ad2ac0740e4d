// Package enrich turns raw interaction events into the structured text
// contexts that prompt synthesis renders and quality scoring inspects.
//
// Every extractor is total: absent input fields produce documented defaults
// ("unknown", empty string) instead of errors, so one sparse event never
// aborts a session.
package enrich

import (
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mkurahn/wayfind/prodstate"
	"github.com/mkurahn/wayfind/session"
)

// Context is the full extracted context for one event. Each field is a
// rendered text block; empty means the underlying data was absent, which
// quality scoring treats as a missing factor.
type Context struct {
	Page          string
	Element       string
	Spatial       string
	Business      string
	Visual        string
	Accessibility string
	State         string
	Form          string
	Performance   string
	Timing        string
	Network       string
	Errors        string
	Analytics     string
	SEO           string
	User          string
	Hierarchy     string
	DesignSystem  string
	Behavior      string

	// NearbyCount is the number of captured nearby elements; >3 counts as
	// complete spatial coverage for scoring.
	NearbyCount int
}

// Config tunes extraction.
type Config struct {
	// MaxFragmentLen caps the markdown rendering of HTML fragments.
	// Defaults to 600 runes.
	MaxFragmentLen int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxFragmentLen <= 0 {
		c.MaxFragmentLen = 600
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor renders Context blocks from events. Safe for reuse across
// sessions; it holds no per-session state.
type Extractor struct {
	cfg      Config
	sanitize *bluemonday.Policy
	md       *converter.Converter
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{
		cfg:      cfg,
		sanitize: bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Extract builds the full Context for one event. The store supplies
// accumulated product-configuration state for the business and state
// blocks; it may be nil for sessions with no product interactions.
func (x *Extractor) Extract(ev *session.InteractionEvent, store *prodstate.Store) Context {
	c := Context{
		Page:          x.pageContext(ev),
		Element:       x.elementContext(ev),
		Spatial:       x.spatialContext(ev),
		Visual:        visualContext(ev),
		Accessibility: accessibilityContext(ev),
		State:         stateContext(ev),
		Form:          formContext(ev),
		Performance:   performanceContext(ev),
		Timing:        timingContext(ev),
		Network:       networkContext(ev),
		Errors:        errorContext(ev),
		Analytics:     analyticsContext(ev),
		SEO:           seoContext(ev),
		User:          userContext(ev),
		Hierarchy:     x.hierarchyContext(ev),
		DesignSystem:  designSystemContext(ev),
		Behavior:      behaviorContext(ev),
		NearbyCount:   len(ev.Element.Nearby),
	}
	if store != nil {
		c.Business = store.EnhancedBusinessContext(ev)
		// Product-scoped events carry the accumulated configuration in the
		// state block, alongside any captured DOM state deltas.
		if id := prodstate.ExtractProductID(ev); id != "" {
			if block := store.StateContext(id); block != "" {
				if c.State != "" {
					c.State += "\n\n" + block
				} else {
					c.State = block
				}
			}
		}
	} else {
		c.Business = rawBusinessContext(ev)
	}
	return c
}

// markdownFragment sanitizes an HTML fragment and renders it as markdown.
// Conversion failures fall back to the sanitized plain text.
func (x *Extractor) markdownFragment(html, sourceURL string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	clean := x.sanitize.Sanitize(html)
	out, err := x.md.ConvertString(clean, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(out) == "" {
		out = stripTags.Sanitize(clean)
	}
	out = strings.TrimSpace(out)
	return truncate(out, x.cfg.MaxFragmentLen)
}

var stripTags = bluemonday.StrictPolicy()

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

func orUnknown(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "unknown"
}
