package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkurahn/wayfind/journey"
	"github.com/mkurahn/wayfind/selector"
)

// journeyExamples renders the three journey-level examples: the complete
// ordered flow, a funnel-progression summary when at least two distinct
// stages occur, and a decision-validation summary when decision points
// exist.
func (s *Synthesizer) journeyExamples(ctx context.Context, j *journey.Journey, meta *JourneyMetadata, counters *counterSource) []*Example {
	var out []*Example

	if ex := s.flowExample(ctx, j, meta, counters); ex != nil {
		out = append(out, ex)
	}
	if len(meta.Stages) >= 2 {
		if ex := s.funnelExample(j, meta); ex != nil {
			out = append(out, ex)
		}
	}
	if len(meta.DecisionPoints) > 0 {
		if ex := s.decisionExample(j, meta); ex != nil {
			out = append(out, ex)
		}
	}
	return out
}

// flowExample pairs the full step listing with the ordered action sequence.
func (s *Synthesizer) flowExample(ctx context.Context, j *journey.Journey, meta *JourneyMetadata, counters *counterSource) *Example {
	actions := make([]Action, 0, j.Len())
	var steps []string
	for i := range j.Events {
		ev := &j.Events[i]
		res := s.resolver.Resolve(ctx, selector.Input{
			Element: ev.Element,
			Set:     ev.Selectors,
			Counter: counters.counterFor(ev),
		})
		actions = append(actions, s.action(ev, &res, i+1, j.Len()))
		steps = append(steps, stepLine(i+1, ev))
	}

	completion, err := marshalCompletion(actions)
	if err != nil {
		s.cfg.Logger.Warn("synth: flow completion marshal failed", "error", err)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", meta.Intent)
	if meta.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", meta.Goal)
	}
	fmt.Fprintf(&b, "Journey Type: %s\n\n", meta.Type)
	b.WriteString("Observed flow:\n")
	b.WriteString(strings.Join(steps, "\n"))
	b.WriteString("\n\nProduce the full action sequence for this task.")

	return &Example{
		Prompt:     b.String(),
		Completion: completion,
		Kind:       KindJourney,
		Variant:    VariantJourneyFlow,
		Journey:    meta,
	}
}

func (s *Synthesizer) funnelExample(j *journey.Journey, meta *JourneyMetadata) *Example {
	prog := j.Progression()
	names := make([]string, len(prog))
	for i, st := range prog {
		names[i] = string(st)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", meta.Intent)
	fmt.Fprintf(&b, "Journey Type: %s\n\n", meta.Type)
	fmt.Fprintf(&b, "A %d-step session moved through the purchase funnel.\n", meta.Steps)
	b.WriteString("Summarize the funnel progression and the outcome.")

	completion, err := marshalCompletion(map[string]any{
		"funnel_progression":     names,
		"stages_reached":         len(meta.Stages),
		"goal":                   meta.Goal,
		"conversion_probability": meta.ConversionProbability,
	})
	if err != nil {
		return nil
	}
	return &Example{
		Prompt:     b.String(),
		Completion: completion,
		Kind:       KindJourney,
		Variant:    VariantJourneyFunnel,
		Journey:    meta,
	}
}

func (s *Synthesizer) decisionExample(j *journey.Journey, meta *JourneyMetadata) *Example {
	type point struct {
		Step     int    `json:"step"`
		Text     string `json:"text,omitempty"`
		PageType string `json:"page_type,omitempty"`
	}
	var points []point
	var lines []string
	for _, idx := range meta.DecisionPoints {
		if idx < 0 || idx >= j.Len() {
			continue
		}
		ev := &j.Events[idx]
		points = append(points, point{
			Step:     idx + 1,
			Text:     clip(ev.Element.Text, 60),
			PageType: ev.Page.PageType,
		})
		lines = append(lines, stepLine(idx+1, ev))
	}
	if len(points) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", meta.Intent)
	fmt.Fprintf(&b, "Journey Type: %s\n\n", meta.Type)
	b.WriteString("The user paused to validate or compare at these steps:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nSummarize the validation behavior before the goal.")

	completion, err := marshalCompletion(map[string]any{
		"decision_points": points,
		"goal":            meta.Goal,
		"total_steps":     meta.Steps,
	})
	if err != nil {
		return nil
	}
	return &Example{
		Prompt:     b.String(),
		Completion: completion,
		Kind:       KindJourney,
		Variant:    VariantJourneyDecision,
		Journey:    meta,
	}
}
