package journey

import "github.com/mkurahn/wayfind/session"

// Derived bundles reframe the same session from training-oriented angles:
// what surrounded each decision, how the funnel progressed, and which runs
// ended at a goal. They are built from the full event list independently of
// the primary scan and deduplicated afterwards.

// decisionBundles emits a window of ±DecisionRadius around every
// validation/comparison interaction.
func (s *Segmenter) decisionBundles(events []session.InteractionEvent) []Journey {
	var out []Journey
	for i := range events {
		if !DecisionPoint(&events[i]) {
			continue
		}
		lo := i - s.cfg.DecisionRadius
		if lo < 0 {
			lo = 0
		}
		hi := i + s.cfg.DecisionRadius + 1
		if hi > len(events) {
			hi = len(events)
		}
		window := events[lo:hi]
		if s.valid(window) {
			out = append(out, s.finish(window, KindDecision))
		}
	}
	return out
}

// funnelBundles emits maximal windows of non-regressing funnel progression,
// restarting on any stage regression.
func (s *Segmenter) funnelBundles(events []session.InteractionEvent) []Journey {
	var out []Journey
	start := 0
	prevIdx := -1

	flush := func(end int) {
		window := events[start:end]
		if s.valid(window) && len((&Journey{Events: window}).Stages()) >= 2 {
			out = append(out, s.finish(window, KindFunnel))
		}
	}

	for i := range events {
		idx := StageIndex(Stage(events[i].FunnelStage()))
		if idx >= 0 && prevIdx >= 0 && idx < prevIdx {
			flush(i)
			start = i
		}
		if idx >= 0 {
			prevIdx = idx
		}
	}
	flush(len(events))
	return out
}

// goalBundles emits runs that end at a completion event: each window spans
// from just after the previous completion to the current one.
func (s *Segmenter) goalBundles(events []session.InteractionEvent) []Journey {
	var out []Journey
	start := 0
	for i := range events {
		if !Complete(&events[i]) {
			continue
		}
		window := events[start : i+1]
		if s.valid(window) {
			out = append(out, s.finish(window, KindGoal))
		}
		start = i + 1
	}
	return out
}
