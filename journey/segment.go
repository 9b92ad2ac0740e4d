package journey

import (
	"log/slog"
	"time"

	"github.com/mkurahn/wayfind/session"
)

// Config holds the segmentation thresholds. All of them are tuned
// heuristics; they are configuration so deployments can adjust without a
// rebuild.
type Config struct {
	// IdleGap breaks a journey when the pause between two events exceeds it.
	IdleGap time.Duration

	// RegressionThreshold is the number of ordered funnel stages the flow
	// must drop to force a break.
	RegressionThreshold int

	// SoftCap ends a journey at this length when a conversion-style action
	// is already present.
	SoftCap int

	// HardCap ends a journey at this length unconditionally.
	HardCap int

	// DecisionRadius is the window half-width for decision-point bundles.
	DecisionRadius int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.IdleGap <= 0 {
		c.IdleGap = 5 * time.Minute
	}
	if c.RegressionThreshold <= 0 {
		c.RegressionThreshold = 2
	}
	if c.SoftCap <= 0 {
		c.SoftCap = 5
	}
	if c.HardCap <= 0 {
		c.HardCap = 8
	}
	if c.DecisionRadius <= 0 {
		c.DecisionRadius = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Segmenter groups a session's events into journeys.
type Segmenter struct {
	cfg Config
}

// NewSegmenter creates a Segmenter.
func NewSegmenter(cfg Config) *Segmenter {
	cfg.defaults()
	return &Segmenter{cfg: cfg}
}

// Segment stable-sorts events by timestamp, emits the primary journeys, then
// derives decision/funnel/goal bundles from the full list and deduplicates
// everything. Invalid fragments are dropped silently; that is filtering, not
// failure.
func (s *Segmenter) Segment(events []session.InteractionEvent) []Journey {
	if len(events) == 0 {
		return nil
	}
	session.SortEvents(events)

	primary := s.primaryJourneys(events)

	var all []Journey
	all = append(all, primary...)
	all = append(all, s.decisionBundles(events)...)
	all = append(all, s.funnelBundles(events)...)
	all = append(all, s.goalBundles(events)...)

	return dedupe(all)
}

// primaryJourneys runs the sequential break-point scan.
func (s *Segmenter) primaryJourneys(events []session.InteractionEvent) []Journey {
	var out []Journey
	var start, end int // current candidate is events[start:end]
	complete := false
	task := ""

	flush := func() {
		cand := events[start:end]
		if s.valid(cand) {
			out = append(out, s.finish(cand, KindPrimary))
		} else if len(cand) > 0 {
			s.cfg.Logger.Debug("journey: dropping invalid fragment", "len", len(cand))
		}
		start = end
		complete = false
		task = ""
	}

	for i := range events {
		ev := &events[i]
		if end > start && s.shouldBreak(events[start:end], complete, task, ev) {
			flush()
		}
		end = i + 1
		if tc := taskContext(ev); tc != "" {
			task = tc
		}
		complete = Complete(ev)
	}
	flush()

	return out
}

// shouldBreak decides whether ev starts a new journey given the current
// candidate. The candidate is never empty here.
func (s *Segmenter) shouldBreak(cand []session.InteractionEvent, complete bool, task string, ev *session.InteractionEvent) bool {
	prev := &cand[len(cand)-1]

	if complete {
		return true
	}
	if gap := ev.Time().Sub(prev.Time()); gap > s.cfg.IdleGap {
		return true
	}
	if prevStage := lastKnownStage(cand); prevStage != "" {
		if Regressed(prevStage, Stage(ev.FunnelStage())) >= s.cfg.RegressionThreshold {
			return true
		}
	}
	if next := taskContext(ev); next != "" && task != "" && materialChange(task, next) {
		return true
	}
	if len(cand) >= s.cfg.HardCap {
		return true
	}
	if len(cand) >= s.cfg.SoftCap && hasConversionAction(cand) {
		return true
	}
	return false
}

// valid applies the emission rule: length >= 2, and either >= 2 distinct
// funnel stages or length >= 3.
func (s *Segmenter) valid(cand []session.InteractionEvent) bool {
	if len(cand) < 2 {
		return false
	}
	if len(cand) >= 3 {
		return true
	}
	j := Journey{Events: cand}
	return len(j.Stages()) >= 2
}

// finish builds the Journey view with derived metadata.
func (s *Segmenter) finish(cand []session.InteractionEvent, kind Kind) Journey {
	j := Journey{Events: cand, Kind: kind}
	for i := range cand {
		if DecisionPoint(&cand[i]) {
			j.DecisionPoints = append(j.DecisionPoints, i)
		}
	}
	j.ConversionProbability = conversionProbability(&j)
	return j
}

// conversionProbability estimates how likely this flow ends in conversion:
// funnel depth reached, plus a bonus for an actually-complete ending.
func conversionProbability(j *Journey) float64 {
	maxIdx := -1
	for i := range j.Events {
		if idx := StageIndex(Stage(j.Events[i].FunnelStage())); idx > maxIdx {
			maxIdx = idx
		}
	}
	p := 0.0
	if maxIdx >= 0 {
		p = 0.8 * float64(maxIdx) / float64(StageIndex(StageRetention))
	}
	if last := j.Last(); last != nil && Complete(last) {
		p += 0.2
	}
	if p > 1 {
		p = 1
	}
	return p
}

func lastKnownStage(events []session.InteractionEvent) Stage {
	for i := len(events) - 1; i >= 0; i-- {
		s := Stage(events[i].FunnelStage())
		if StageIndex(s) >= 0 {
			return s
		}
	}
	return ""
}

func hasConversionAction(events []session.InteractionEvent) bool {
	for i := range events {
		if ConversionAction(&events[i]) {
			return true
		}
	}
	return false
}
