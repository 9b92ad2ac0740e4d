// Package pipeline wires the full session-to-dataset flow: sort events,
// accumulate product state, segment journeys, classify, synthesize
// examples, then score and filter the final set.
//
// One Process call handles one session end to end. The product store is
// created fresh per call, so concurrent sessions never share state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkurahn/wayfind/classify"
	"github.com/mkurahn/wayfind/enrich"
	"github.com/mkurahn/wayfind/journey"
	"github.com/mkurahn/wayfind/prodstate"
	"github.com/mkurahn/wayfind/quality"
	"github.com/mkurahn/wayfind/selector"
	"github.com/mkurahn/wayfind/session"
	"github.com/mkurahn/wayfind/synth"
)

// Result is the processed output for one session.
type Result struct {
	SessionID string           `json:"session_id"`
	Examples  []*synth.Example `json:"examples"`
	Report    quality.Report   `json:"report"`
	Journeys  int              `json:"journeys"`
}

// Pipeline is the session processor. Safe for concurrent use: all
// per-session state is created inside Process.
type Pipeline struct {
	cfg       *Config
	log       *slog.Logger
	resolver  *selector.Resolver
	segmenter *journey.Segmenter
	synth     *synth.Synthesizer
	scorer    *quality.Scorer
	counter   selector.MatchCounter
}

// New builds a Pipeline from configuration. cfg may be nil for defaults.
func New(cfg *Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = &Config{}
		cfg.applyDefaults()
	}
	if logger == nil {
		logger = slog.Default()
	}

	resolver := selector.New(selector.Config{
		TestAttributes: cfg.Selector.TestAttributes,
		Logger:         logger,
	})
	extractor := enrich.New(enrich.Config{Logger: logger})

	return &Pipeline{
		cfg:      cfg,
		log:      logger,
		resolver: resolver,
		segmenter: journey.NewSegmenter(journey.Config{
			IdleGap:             cfg.Journey.IdleGap,
			RegressionThreshold: cfg.Journey.RegressionThreshold,
			SoftCap:             cfg.Journey.SoftCap,
			HardCap:             cfg.Journey.HardCap,
			DecisionRadius:      cfg.Journey.DecisionRadius,
			Logger:              logger,
		}),
		synth: synth.New(synth.Config{
			EnhancedMinContexts: cfg.Synth.EnhancedMinContexts,
			Logger:              logger,
		}, resolver, extractor),
		scorer: quality.New(quality.Config{
			JourneyThreshold:    cfg.Quality.JourneyThreshold,
			IndividualThreshold: cfg.Quality.IndividualThreshold,
			JourneyBoost:        cfg.Quality.JourneyBoost,
			MinIndividual:       cfg.Quality.MinIndividual,
			Logger:              logger,
		}),
	}
}

// SetMatchCounter wires a live selector verifier (for example a browser
// probe). Nil falls back to capture-agent counts.
func (p *Pipeline) SetMatchCounter(c selector.MatchCounter) {
	p.counter = c
}

// Process runs the full pipeline over one session. The only error is
// genuinely corrupt input; sparse or empty sessions produce an empty result.
func (p *Pipeline) Process(ctx context.Context, sess *session.Session) (*Result, error) {
	if sess == nil {
		return nil, fmt.Errorf("pipeline: nil session")
	}
	log := p.log.With("session_id", sess.ID)

	events := make([]session.InteractionEvent, len(sess.Events))
	copy(events, sess.Events)
	session.SortEvents(events)

	store := prodstate.NewStore(prodstate.Config{
		Required:   p.cfg.Product.requiredKinds(),
		Thresholds: p.cfg.Product.thresholds(),
		Logger:     p.log,
	})
	for i := range events {
		store.ProcessInteraction(&events[i])
	}

	journeys := p.segmenter.Segment(events)

	var candidates []*synth.Example
	for i := range journeys {
		j := &journeys[i]
		classify.Apply(j, sess)
		candidates = append(candidates, p.synth.Examples(ctx, j, store, p.counter)...)
	}

	examples, report := p.scorer.Filter(candidates, len(journeys))

	log.Info("pipeline: session processed",
		"events", len(events),
		"journeys", len(journeys),
		"candidates", len(candidates),
		"examples", report.Total,
	)

	return &Result{
		SessionID: sess.ID,
		Examples:  examples,
		Report:    report,
		Journeys:  len(journeys),
	}, nil
}

// ProcessPayload decodes a raw session payload and processes it. Corrupt
// payloads fail fast.
func (p *Pipeline) ProcessPayload(ctx context.Context, payload []byte) (*Result, error) {
	sess, err := session.Parse(payload)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, sess)
}
