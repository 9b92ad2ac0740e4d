package journey

import "github.com/mkurahn/wayfind/session"

// Kind distinguishes primary journeys from the derived training bundles.
type Kind string

const (
	KindPrimary  Kind = "primary"
	KindDecision Kind = "decision-window"
	KindFunnel   Kind = "funnel-window"
	KindGoal     Kind = "goal-window"
)

// Journey is a read-only ordered view over a session's events plus derived
// metadata. It never owns or mutates the events.
type Journey struct {
	Events []session.InteractionEvent `json:"events"`
	Kind   Kind                       `json:"kind"`

	// Classification results, filled by the classify package.
	Type   string `json:"journey_type,omitempty"`
	Goal   string `json:"journey_goal,omitempty"`
	Intent string `json:"user_intent,omitempty"`

	// DecisionPoints are indices into Events of validation/comparison steps.
	DecisionPoints []int `json:"decision_points,omitempty"`

	// ConversionProbability is a rough estimate derived from funnel reach.
	ConversionProbability float64 `json:"conversion_probability"`
}

// Len returns the number of steps.
func (j *Journey) Len() int { return len(j.Events) }

// Stages returns the distinct funnel stages in first-seen order.
func (j *Journey) Stages() []Stage {
	seen := make(map[Stage]bool)
	var out []Stage
	for i := range j.Events {
		s := Stage(j.Events[i].FunnelStage())
		if s == "" || StageIndex(s) < 0 || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Progression renders the funnel path step by step (repeats collapsed).
func (j *Journey) Progression() []Stage {
	var out []Stage
	for i := range j.Events {
		s := Stage(j.Events[i].FunnelStage())
		if s == "" || StageIndex(s) < 0 {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Last returns the final event, or nil for an empty journey.
func (j *Journey) Last() *session.InteractionEvent {
	if len(j.Events) == 0 {
		return nil
	}
	return &j.Events[len(j.Events)-1]
}
