// Package journey segments one session's ordered interaction events into
// bounded, coherent sub-sequences ("journeys") and derives additional
// training-oriented bundles from the same event list.
//
// The break-point rules, completion detection, and validity checks follow
// the canonical purchase funnel; thresholds are configuration, not
// hard-coded behavior.
package journey

// Stage is a position in the canonical conversion funnel.
type Stage string

const (
	StageDiscovery     Stage = "discovery"
	StageAwareness     Stage = "awareness"
	StageConsideration Stage = "consideration"
	StageEvaluation    Stage = "evaluation"
	StageValidation    Stage = "validation"
	StageConversion    Stage = "conversion"
	StageRetention     Stage = "retention"
)

// stageOrder maps each stage to its ordinal position. Unknown stages map to
// -1 and never participate in regression checks.
var stageOrder = map[Stage]int{
	StageDiscovery:     0,
	StageAwareness:     1,
	StageConsideration: 2,
	StageEvaluation:    3,
	StageValidation:    4,
	StageConversion:    5,
	StageRetention:     6,
}

// StageIndex returns a stage's ordinal, or -1 for unknown/absent stages.
func StageIndex(s Stage) int {
	if i, ok := stageOrder[s]; ok {
		return i
	}
	return -1
}

// Regressed reports how many ordered stages the funnel dropped going from
// prev to next. Zero when either stage is unknown or the funnel advanced.
func Regressed(prev, next Stage) int {
	p, n := StageIndex(prev), StageIndex(next)
	if p < 0 || n < 0 || n >= p {
		return 0
	}
	return p - n
}
