// Package synth renders journeys and their member interactions into
// prompt/completion training examples.
//
// Only Prompt and Completion are required downstream; everything else on an
// Example exists for scoring, analytics, and dataset reporting and may be
// dropped without breaking the fine-tuning hand-off.
package synth

import (
	"github.com/mkurahn/wayfind/enrich"
	"github.com/mkurahn/wayfind/selector"
)

// Kind groups examples for filtering: journey-class examples pass a lower
// quality threshold than single-action ones.
type Kind string

const (
	KindSingleAction Kind = "single-action"
	KindContext      Kind = "context"
	KindJourney      Kind = "journey"
)

// Variant names for the context-combination examples.
const (
	VariantCanonical          = "canonical"
	VariantVisualA11y         = "visual-accessibility"
	VariantBusinessConversion = "business-conversion"
	VariantPerformanceNetwork = "performance-network"
	VariantStateForm          = "state-form"
	VariantDOMHierarchy       = "dom-hierarchy"
	VariantAnalyticsUser      = "analytics-user"
	VariantEnhanced           = "enhanced"
	VariantJourneyFlow        = "journey-flow"
	VariantJourneyFunnel      = "journey-funnel"
	VariantJourneyDecision    = "journey-decision"
)

// Quality is filled by the scorer. Factors record which context signals
// contributed to the score.
type Quality struct {
	Score   float64         `json:"score"`
	Factors map[string]bool `json:"factors,omitempty"`
}

// JourneyMetadata summarizes the containing journey on journey-aware
// examples.
type JourneyMetadata struct {
	Type                  string   `json:"journey_type,omitempty"`
	Goal                  string   `json:"journey_goal,omitempty"`
	Intent                string   `json:"user_intent,omitempty"`
	Steps                 int      `json:"total_steps"`
	Stages                []string `json:"funnel_stages,omitempty"`
	DecisionPoints        []int    `json:"decision_points,omitempty"`
	ConversionProbability float64  `json:"conversion_probability"`
}

// Action is the structured completion for an action-anchored example. It is
// marshaled to JSON and used verbatim as the completion text.
type Action struct {
	Action     string   `json:"action"`
	Selector   string   `json:"selector,omitempty"`
	Reasoning  string   `json:"reasoning"`
	Confidence float64  `json:"confidence"`
	Fallbacks  []string `json:"fallback_selectors,omitempty"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Value      string   `json:"value,omitempty"`

	Step        int    `json:"step,omitempty"`
	TotalSteps  int    `json:"total_steps,omitempty"`
	FunnelStage string `json:"funnel_stage,omitempty"`
}

// Example is one training example candidate.
type Example struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`

	Kind    Kind   `json:"kind"`
	Variant string `json:"variant"`

	Context    *enrich.Context      `json:"context,omitempty"`
	Resolution *selector.Resolution `json:"resolution,omitempty"`
	Journey    *JourneyMetadata     `json:"journey_metadata,omitempty"`
	Quality    *Quality             `json:"quality,omitempty"`
}
