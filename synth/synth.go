package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkurahn/wayfind/enrich"
	"github.com/mkurahn/wayfind/journey"
	"github.com/mkurahn/wayfind/prodstate"
	"github.com/mkurahn/wayfind/selector"
	"github.com/mkurahn/wayfind/session"
)

// Config tunes synthesis. Zero value is usable.
type Config struct {
	// EnhancedMinContexts is how many non-empty context blocks an event
	// needs before the full combined bundle is emitted. Defaults to 6.
	EnhancedMinContexts int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.EnhancedMinContexts <= 0 {
		c.EnhancedMinContexts = 6
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Synthesizer renders examples from classified journeys. Stateless across
// sessions.
type Synthesizer struct {
	cfg       Config
	resolver  *selector.Resolver
	extractor *enrich.Extractor
}

// New creates a Synthesizer. Resolver and extractor may be nil, in which
// case defaults are constructed.
func New(cfg Config, resolver *selector.Resolver, extractor *enrich.Extractor) *Synthesizer {
	cfg.defaults()
	if resolver == nil {
		resolver = selector.New(selector.Config{Logger: cfg.Logger})
	}
	if extractor == nil {
		extractor = enrich.New(enrich.Config{Logger: cfg.Logger})
	}
	return &Synthesizer{cfg: cfg, resolver: resolver, extractor: extractor}
}

// Examples renders all candidates for one classified journey: per-event
// examples first, in event order, then the journey-level examples. The
// counter supplies live match counts and may be nil; without one, events
// carrying a page snapshot are counted against the parsed snapshot.
func (s *Synthesizer) Examples(ctx context.Context, j *journey.Journey, store *prodstate.Store, counter selector.MatchCounter) []*Example {
	meta := metadata(j)
	counters := s.newCounterSource(counter)
	var out []*Example
	for i := range j.Events {
		out = append(out, s.eventExamples(ctx, j, i, meta, store, counters)...)
	}
	out = append(out, s.journeyExamples(ctx, j, meta, counters)...)
	return out
}

// counterSource picks the match counter for one event: the live counter
// when wired, else a snapshot counter parsed from the event's page HTML.
// Parsed snapshots are cached for the life of one Examples call, so the
// same page is parsed once and repeated resolutions stay deterministic.
type counterSource struct {
	s         *Synthesizer
	live      selector.MatchCounter
	snapshots map[string]selector.MatchCounter
}

func (s *Synthesizer) newCounterSource(live selector.MatchCounter) *counterSource {
	return &counterSource{s: s, live: live, snapshots: map[string]selector.MatchCounter{}}
}

func (cs *counterSource) counterFor(ev *session.InteractionEvent) selector.MatchCounter {
	if cs.live != nil {
		return cs.live
	}
	pageHTML := ev.Page.HTML
	if pageHTML == "" {
		return nil
	}
	if c, ok := cs.snapshots[pageHTML]; ok {
		return c
	}
	var c selector.MatchCounter
	if sc, err := selector.NewSnapshotCounter(pageHTML); err != nil {
		cs.s.cfg.Logger.Warn("synth: page snapshot parse failed, using capture counts", "error", err)
	} else {
		c = sc
	}
	cs.snapshots[pageHTML] = c
	return c
}

// eventExamples renders the canonical single-action example (when the
// selector resolved to something non-trivial) plus one example per
// secondary-context combination that has data.
func (s *Synthesizer) eventExamples(ctx context.Context, j *journey.Journey, idx int, meta *JourneyMetadata, store *prodstate.Store, counters *counterSource) []*Example {
	ev := &j.Events[idx]
	res := s.resolver.Resolve(ctx, selector.Input{
		Element: ev.Element,
		Set:     ev.Selectors,
		Counter: counters.counterFor(ev),
	})
	c := s.extractor.Extract(ev, store)
	act := s.action(ev, &res, idx+1, j.Len())

	completion, err := marshalCompletion(act)
	if err != nil {
		s.cfg.Logger.Warn("synth: completion marshal failed, skipping event", "event_id", ev.ID, "error", err)
		return nil
	}

	base := s.basePrompt(ev, &res, &c, meta, idx+1)
	var out []*Example

	if !res.Trivial && res.Best != "" {
		out = append(out, &Example{
			Prompt:     base,
			Completion: completion,
			Kind:       KindSingleAction,
			Variant:    VariantCanonical,
			Context:    &c,
			Resolution: &res,
			Journey:    meta,
		})
	}

	for _, combo := range s.combos(ev, &c) {
		out = append(out, &Example{
			Prompt:     base + "\n\n" + combo.blocks,
			Completion: completion,
			Kind:       KindContext,
			Variant:    combo.variant,
			Context:    &c,
			Resolution: &res,
			Journey:    meta,
		})
	}
	return out
}

type combo struct {
	variant string
	blocks  string
}

// combos returns the secondary-context combinations that have data, in a
// fixed order so output is deterministic.
func (s *Synthesizer) combos(ev *session.InteractionEvent, c *enrich.Context) []combo {
	var out []combo
	add := func(variant string, blocks ...string) {
		for _, b := range blocks {
			if b == "" {
				return
			}
		}
		out = append(out, combo{variant: variant, blocks: joinBlocks(blocks...)})
	}

	add(VariantVisualA11y, c.Visual, c.Accessibility)
	if ev.ConversionGoal() != "" || journey.ConversionAction(ev) {
		add(VariantBusinessConversion, c.Business)
	}
	add(VariantPerformanceNetwork, c.Performance, c.Network)
	add(VariantStateForm, c.State, c.Form)
	add(VariantDOMHierarchy, c.Hierarchy)
	add(VariantAnalyticsUser, c.Analytics, c.User)

	if countBlocks(c) >= s.cfg.EnhancedMinContexts {
		out = append(out, combo{variant: VariantEnhanced, blocks: joinBlocks(
			c.Visual, c.Accessibility, c.Business, c.Performance, c.Network,
			c.State, c.Form, c.Hierarchy, c.Analytics, c.User, c.Errors,
			c.SEO, c.Timing, c.DesignSystem, c.Behavior,
		)})
	}
	return out
}

func countBlocks(c *enrich.Context) int {
	n := 0
	for _, b := range []string{
		c.Spatial, c.Business, c.Visual, c.Accessibility, c.State, c.Form,
		c.Performance, c.Network, c.Errors, c.Analytics, c.SEO, c.Timing,
		c.User, c.Hierarchy, c.DesignSystem, c.Behavior,
	} {
		if b != "" {
			n++
		}
	}
	return n
}

// action builds the structured completion for one event.
func (s *Synthesizer) action(ev *session.InteractionEvent, res *selector.Resolution, step, total int) Action {
	cx, cy := ev.Element.Box.Center()
	act := Action{
		Action:      actionVerb(ev.Type),
		Selector:    res.Best,
		Reasoning:   reasoning(ev, res),
		Confidence:  res.Reliability,
		Fallbacks:   res.Backups,
		X:           cx,
		Y:           cy,
		Step:        step,
		TotalSteps:  total,
		FunnelStage: ev.FunnelStage(),
	}
	if ev.Type == session.EventInput || ev.Type == session.EventKeyPress {
		act.Value = ev.Element.Value
	}
	return act
}

func actionVerb(t session.EventType) string {
	switch t {
	case session.EventClick:
		return "click"
	case session.EventInput:
		return "type"
	case session.EventFormSubmit:
		return "submit"
	case session.EventFocus:
		return "focus"
	case session.EventKeyPress:
		return "press"
	case session.EventNavigation:
		return "navigate"
	default:
		return "interact"
	}
}

// reasoning explains the selector choice in one sentence for the model to
// imitate.
func reasoning(ev *session.InteractionEvent, res *selector.Resolution) string {
	target := ev.Element.Text
	if target == "" {
		target = ev.Element.Tag
	}
	if res.Best == "" {
		return fmt.Sprintf("No usable selector for %q; falling back to coordinates.", clip(target, 60))
	}
	b := fmt.Sprintf("Targeting %q via %s (reliability %.2f", clip(target, 60), res.Best, res.Reliability)
	if len(res.Backups) > 0 {
		b += fmt.Sprintf(", %d fallback(s)", len(res.Backups))
	}
	return b + ")."
}

func marshalCompletion(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("synth: marshal completion: %w", err)
	}
	return string(raw), nil
}

func metadata(j *journey.Journey) *JourneyMetadata {
	stages := j.Stages()
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = string(st)
	}
	return &JourneyMetadata{
		Type:                  j.Type,
		Goal:                  j.Goal,
		Intent:                j.Intent,
		Steps:                 j.Len(),
		Stages:                names,
		DecisionPoints:        j.DecisionPoints,
		ConversionProbability: j.ConversionProbability,
	}
}

func joinBlocks(blocks ...string) string {
	var kept []string
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
