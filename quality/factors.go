package quality

import (
	"github.com/mkurahn/wayfind/classify"
	"github.com/mkurahn/wayfind/synth"
)

// factor is one additive scoring signal. Factors are data so each one is
// independently testable and new signals do not grow a conditional chain.
type factor struct {
	name   string
	weight float64
	pred   func(ex *synth.Example) bool
}

func hasContext(get func(ex *synth.Example) string) func(ex *synth.Example) bool {
	return func(ex *synth.Example) bool {
		return ex.Context != nil && get(ex) != ""
	}
}

// individualFactors score single-action and context examples. Weights sum
// past 1.0 on purpose; the total is clipped, so a rich example saturates.
var individualFactors = []factor{
	{"reliable_selector", 0.20, func(ex *synth.Example) bool {
		return ex.Resolution != nil && ex.Resolution.Reliability >= 0.8
	}},
	{"spatial_context", 0.10, hasContext(func(ex *synth.Example) string { return ex.Context.Spatial })},
	{"business_context", 0.10, hasContext(func(ex *synth.Example) string { return ex.Context.Business })},
	{"visual_context", 0.08, hasContext(func(ex *synth.Example) string { return ex.Context.Visual })},
	{"accessibility_context", 0.08, hasContext(func(ex *synth.Example) string { return ex.Context.Accessibility })},
	{"state_context", 0.06, hasContext(func(ex *synth.Example) string { return ex.Context.State })},
	{"form_context", 0.06, hasContext(func(ex *synth.Example) string { return ex.Context.Form })},
	{"performance_context", 0.05, hasContext(func(ex *synth.Example) string { return ex.Context.Performance })},
	{"network_context", 0.04, hasContext(func(ex *synth.Example) string { return ex.Context.Network })},
	{"timing_context", 0.04, hasContext(func(ex *synth.Example) string { return ex.Context.Timing })},
	{"seo_context", 0.03, hasContext(func(ex *synth.Example) string { return ex.Context.SEO })},
	{"analytics_context", 0.04, hasContext(func(ex *synth.Example) string { return ex.Context.Analytics })},
	{"error_context", 0.03, hasContext(func(ex *synth.Example) string { return ex.Context.Errors })},
	{"user_context", 0.04, hasContext(func(ex *synth.Example) string { return ex.Context.User })},
	{"complete_nearby", 0.06, func(ex *synth.Example) bool {
		return ex.Context != nil && ex.Context.NearbyCount > 3
	}},
	{"design_system_context", 0.04, hasContext(func(ex *synth.Example) string { return ex.Context.DesignSystem })},
	{"behavior_context", 0.05, hasContext(func(ex *synth.Example) string { return ex.Context.Behavior })},
	{"journey_context", 0.10, func(ex *synth.Example) bool {
		return ex.Journey != nil && ex.Journey.Type != "" && ex.Journey.Type != classify.FallbackType
	}},
}

// Journey-formula weights. Length is graded, the rest are boolean.
const (
	journeyBase         = 0.25
	journeyLengthWeight = 0.25 // scaled by min(steps, lengthSaturation)/lengthSaturation
	lengthSaturation    = 8
	journeyFunnelBonus  = 0.20 // >=2 distinct funnel stages
	journeyGoalBonus    = 0.15 // realistic, non-fallback goal
	journeyIntentBonus  = 0.15 // non-fallback intent
)
