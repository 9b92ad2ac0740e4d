// Package quality scores training example candidates and filters the final
// dataset.
//
// Individual examples score on additive context-richness factors; journey
// examples use a separate formula rewarding length, funnel progression, a
// realistic goal, and clear intent. Journey examples pass a lower threshold
// and receive a final boost because multi-step examples are structurally
// sparser but more valuable than isolated actions.
package quality

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mkurahn/wayfind/classify"
	"github.com/mkurahn/wayfind/synth"
)

// Config tunes scoring and filtering. Zero value gives the canonical
// thresholds.
type Config struct {
	// JourneyThreshold is the minimum score for journey-class examples.
	// Defaults to 0.4.
	JourneyThreshold float64

	// IndividualThreshold is the minimum score for single-action and
	// context examples. Defaults to 0.3.
	IndividualThreshold float64

	// JourneyBoost is added to surviving journey examples before the final
	// sort. Defaults to 0.1.
	JourneyBoost float64

	// MinIndividual floors the individual-example cap: the cap is
	// max(journey count, MinIndividual). Defaults to 5.
	MinIndividual int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.JourneyThreshold == 0 {
		c.JourneyThreshold = 0.4
	}
	if c.IndividualThreshold == 0 {
		c.IndividualThreshold = 0.3
	}
	if c.JourneyBoost == 0 {
		c.JourneyBoost = 0.1
	}
	if c.MinIndividual <= 0 {
		c.MinIndividual = 5
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Scorer scores and filters example candidates.
type Scorer struct {
	cfg Config
}

// New creates a Scorer.
func New(cfg Config) *Scorer {
	cfg.defaults()
	return &Scorer{cfg: cfg}
}

// Score fills ex.Quality in place and returns the score.
func (s *Scorer) Score(ex *synth.Example) float64 {
	if ex.Kind == synth.KindJourney {
		return s.scoreJourney(ex)
	}
	return s.scoreIndividual(ex)
}

func (s *Scorer) scoreIndividual(ex *synth.Example) float64 {
	score := 0.0
	factors := make(map[string]bool, len(individualFactors))
	for _, f := range individualFactors {
		ok := f.pred(ex)
		factors[f.name] = ok
		if ok {
			score += f.weight
		}
	}
	score = clip(score)
	ex.Quality = &synth.Quality{Score: score, Factors: factors}
	return score
}

func (s *Scorer) scoreJourney(ex *synth.Example) float64 {
	score := journeyBase
	factors := make(map[string]bool, 4)

	steps := 0
	if ex.Journey != nil {
		steps = ex.Journey.Steps
	}
	if steps > lengthSaturation {
		steps = lengthSaturation
	}
	score += journeyLengthWeight * float64(steps) / float64(lengthSaturation)
	factors["multi_step"] = steps >= 3

	funnel := ex.Journey != nil && len(ex.Journey.Stages) >= 2
	factors["funnel_progression"] = funnel
	if funnel {
		score += journeyFunnelBonus
	}

	goal := ex.Journey != nil && ex.Journey.Goal != "" && ex.Journey.Goal != classify.FallbackGoal
	factors["realistic_goal"] = goal
	if goal {
		score += journeyGoalBonus
	}

	intent := ex.Journey != nil && ex.Journey.Intent != "" && ex.Journey.Intent != classify.FallbackIntent
	factors["clear_intent"] = intent
	if intent {
		score += journeyIntentBonus
	}

	score = clip(score)
	ex.Quality = &synth.Quality{Score: score, Factors: factors}
	return score
}

// Filter scores every candidate, applies the thresholds and the individual
// cap, boosts surviving journey examples, and returns the final ordered
// dataset plus its report. journeyCount is the number of journeys the
// session produced and raises the individual cap on journey-rich sessions.
func (s *Scorer) Filter(candidates []*synth.Example, journeyCount int) ([]*synth.Example, Report) {
	var journeys, individuals []*synth.Example
	for _, ex := range candidates {
		score := s.Score(ex)
		if ex.Kind == synth.KindJourney {
			if score >= s.cfg.JourneyThreshold {
				journeys = append(journeys, ex)
			}
			continue
		}
		if score >= s.cfg.IndividualThreshold {
			individuals = append(individuals, ex)
		}
	}

	limit := journeyCount
	if limit < s.cfg.MinIndividual {
		limit = s.cfg.MinIndividual
	}
	sort.SliceStable(individuals, func(i, k int) bool {
		return individuals[i].Quality.Score > individuals[k].Quality.Score
	})
	if len(individuals) > limit {
		individuals = individuals[:limit]
	}

	for _, ex := range journeys {
		ex.Quality.Score = clip(ex.Quality.Score + s.cfg.JourneyBoost)
	}

	out := make([]*synth.Example, 0, len(journeys)+len(individuals))
	out = append(out, journeys...)
	out = append(out, individuals...)
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].Quality.Score > out[k].Quality.Score
	})

	s.cfg.Logger.Debug("quality: filtered dataset",
		"candidates", len(candidates),
		"journeys", len(journeys),
		"individuals", len(individuals),
	)
	return out, buildReport(out)
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Report is the dataset-health summary for one filtered output set.
type Report struct {
	Total int `json:"total"`

	// Quality tiers: high >= 0.7, medium >= 0.5, low below.
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`

	// Context-type coverage counts.
	Spatial  int `json:"spatial"`
	Visual   int `json:"visual"`
	Business int `json:"business"`
	DOM      int `json:"dom"`
}

func buildReport(examples []*synth.Example) Report {
	r := Report{Total: len(examples)}
	for _, ex := range examples {
		switch score := ex.Quality.Score; {
		case score >= 0.7:
			r.High++
		case score >= 0.5:
			r.Medium++
		default:
			r.Low++
		}
		if c := ex.Context; c != nil {
			if c.Spatial != "" {
				r.Spatial++
			}
			if c.Visual != "" {
				r.Visual++
			}
			if c.Business != "" {
				r.Business++
			}
			if c.Hierarchy != "" {
				r.DOM++
			}
		}
	}
	return r
}

// Summary renders the report as a single log-friendly line.
func (r Report) Summary() string {
	return fmt.Sprintf("examples %d (high %d, medium %d, low %d)", r.Total, r.High, r.Medium, r.Low)
}
