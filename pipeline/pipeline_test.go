package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mkurahn/wayfind/session"
	"github.com/mkurahn/wayfind/synth"
)

func shoppingSession() *session.Session {
	base := int64(1700000000000)
	mk := func(offset int64, id, text, stage string, attrs map[string]string) session.InteractionEvent {
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrs["id"] = id
		return session.InteractionEvent{
			Timestamp: base + offset,
			Type:      session.EventClick,
			Element: session.Element{
				Tag:        "button",
				Text:       text,
				Attributes: attrs,
				Box:        session.BoundingBox{X: 10, Y: 10, Width: 80, Height: 32},
			},
			Page: session.PageContext{
				URL:      "https://shop.example/products/p-100",
				PageType: "product",
			},
			Business: &session.BusinessContext{FunnelStage: stage},
		}
	}
	return &session.Session{
		ID:   "sess-1",
		Task: "buy a trail running shoe",
		Events: []session.InteractionEvent{
			mk(0, "size-M", "M", "consideration", map[string]string{"name": "size"}),
			mk(4000, "color-blue", "Blue", "evaluation", map[string]string{"name": "color"}),
			mk(9000, "add-to-cart", "Add to Cart", "conversion", nil),
		},
	}
}

func TestProcessEmptySession(t *testing.T) {
	p := New(nil, nil)
	res, err := p.Process(context.Background(), &session.Session{ID: "empty"})
	if err != nil {
		t.Fatalf("empty session errored: %v", err)
	}
	if res.Journeys != 0 || len(res.Examples) != 0 || res.Report.Total != 0 {
		t.Errorf("empty session produced output: %+v", res)
	}
}

func TestProcessNilSession(t *testing.T) {
	p := New(nil, nil)
	if _, err := p.Process(context.Background(), nil); err == nil {
		t.Fatal("nil session must error")
	}
}

func TestProcessShoppingSession(t *testing.T) {
	p := New(nil, nil)
	res, err := p.Process(context.Background(), shoppingSession())
	if err != nil {
		t.Fatal(err)
	}
	if res.Journeys == 0 {
		t.Fatal("no journeys segmented")
	}
	if len(res.Examples) == 0 {
		t.Fatal("no examples produced")
	}
	if res.Report.Total != len(res.Examples) {
		t.Errorf("report total %d != %d examples", res.Report.Total, len(res.Examples))
	}
	for _, ex := range res.Examples {
		if ex.Quality == nil {
			t.Fatal("example missing quality")
		}
		if ex.Quality.Score < 0 || ex.Quality.Score > 1 {
			t.Errorf("score %v out of range", ex.Quality.Score)
		}
		if ex.Prompt == "" || ex.Completion == "" {
			t.Error("example missing prompt or completion")
		}
	}

	// Journeys rank above individual actions after the boost.
	if res.Examples[0].Kind != synth.KindJourney {
		t.Errorf("first example kind = %q, want journey", res.Examples[0].Kind)
	}
}

func TestProcessDeterministic(t *testing.T) {
	p := New(nil, nil)
	a, err := p.Process(context.Background(), shoppingSession())
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Process(context.Background(), shoppingSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Examples) != len(b.Examples) {
		t.Fatalf("runs differ: %d vs %d examples", len(a.Examples), len(b.Examples))
	}
	for i := range a.Examples {
		if a.Examples[i].Prompt != b.Examples[i].Prompt ||
			a.Examples[i].Completion != b.Examples[i].Completion ||
			a.Examples[i].Quality.Score != b.Examples[i].Quality.Score {
			t.Fatalf("example %d differs between runs", i)
		}
	}
	if a.Report != b.Report {
		t.Errorf("reports differ: %+v vs %+v", a.Report, b.Report)
	}
}

func TestProcessPayloadCorrupt(t *testing.T) {
	p := New(nil, nil)
	if _, err := p.ProcessPayload(context.Background(), []byte(`"just a string"`)); err == nil {
		t.Fatal("corrupt payload must fail fast")
	}
}

func TestProcessIsolatesSessions(t *testing.T) {
	p := New(nil, nil)
	sess := shoppingSession()
	if _, err := p.Process(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	// A second session on the same product must not inherit selections.
	other := &session.Session{
		ID: "sess-2",
		Events: []session.InteractionEvent{
			{
				Timestamp: 1700000100000,
				Type:      session.EventClick,
				Element:   session.Element{Tag: "button", Text: "Add to Cart", Attributes: map[string]string{"id": "add-to-cart"}, Box: session.BoundingBox{Width: 10, Height: 10}},
				Page:      session.PageContext{URL: "https://shop.example/products/p-100", PageType: "product"},
			},
			{
				Timestamp: 1700000101000,
				Type:      session.EventClick,
				Element:   session.Element{Tag: "a", Text: "Continue", Attributes: map[string]string{"id": "continue"}, Box: session.BoundingBox{Width: 10, Height: 10}},
				Page:      session.PageContext{URL: "https://shop.example/cart", PageType: "cart"},
			},
		},
	}
	res, err := p.Process(context.Background(), other)
	if err != nil {
		t.Fatal(err)
	}
	for _, ex := range res.Examples {
		if ex.Context != nil && strings.Contains(ex.Context.Business, "size M") {
			t.Fatal("product state leaked across sessions")
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wayfind.yaml")
	body := `
listen: ":9100"
journey:
  idle_gap: 2m
  soft_cap: 4
quality:
  journey_threshold: 0.5
sinks:
  - type: webhook
    url: https://ingest.example/datasets
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9100" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Journey.IdleGap != 2*time.Minute {
		t.Errorf("idle_gap = %v", cfg.Journey.IdleGap)
	}
	if cfg.Quality.JourneyThreshold != 0.5 {
		t.Errorf("journey_threshold = %v", cfg.Quality.JourneyThreshold)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Type != "webhook" {
		t.Errorf("sinks = %+v", cfg.Sinks)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/wayfind.yaml"); err == nil {
		t.Fatal("missing config must error")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	if cfg.Listen == "" {
		t.Error("no default listen address")
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Type != "stdout" {
		t.Errorf("default sinks = %+v", cfg.Sinks)
	}
}

// A page snapshot showing a selector is ambiguous must pull its reliability
// down even when no live counter is wired: 15 identical buttons leave every
// candidate in the ambiguous bucket.
func TestProcessSnapshotMatchCounts(t *testing.T) {
	pageHTML := "<html><body>" + strings.Repeat(`<button name="buy">Buy</button>`, 15) + "</body></html>"
	base := int64(1700000000000)
	mk := func(offset int64, text, stage string) session.InteractionEvent {
		return session.InteractionEvent{
			Timestamp: base + offset,
			Type:      session.EventClick,
			Element: session.Element{
				Tag:        "button",
				Text:       text,
				Attributes: map[string]string{"name": "buy"},
				Box:        session.BoundingBox{X: 10, Y: 10, Width: 80, Height: 32},
			},
			Page: session.PageContext{
				URL:      "https://shop.example/products/p-200",
				PageType: "product",
				HTML:     pageHTML,
			},
			Business: &session.BusinessContext{FunnelStage: stage},
		}
	}
	sess := &session.Session{
		ID:   "sess-snap",
		Task: "buy a thing",
		Events: []session.InteractionEvent{
			mk(0, "Buy", "consideration"),
			mk(4000, "Buy", "evaluation"),
			mk(9000, "Add to Cart", "conversion"),
		},
	}

	p := New(nil, nil)
	res, err := p.Process(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}

	for _, ex := range res.Examples {
		if ex.Resolution != nil && ex.Resolution.Best != "" && ex.Resolution.Reliability != 0.3 {
			t.Errorf("%s/%s: reliability = %v for %q, want 0.3 (15 snapshot matches)",
				ex.Kind, ex.Variant, ex.Resolution.Reliability, ex.Resolution.Best)
		}
	}

	var flow *synth.Example
	for _, ex := range res.Examples {
		if ex.Variant == synth.VariantJourneyFlow {
			flow = ex
			break
		}
	}
	if flow == nil {
		t.Fatal("no journey-flow example emitted")
	}
	var actions []synth.Action
	if err := json.Unmarshal([]byte(flow.Completion), &actions); err != nil {
		t.Fatal(err)
	}
	if len(actions) != 3 {
		t.Fatalf("flow has %d actions, want 3", len(actions))
	}
	for i, act := range actions {
		if act.Confidence != 0.3 {
			t.Errorf("action %d confidence = %v, want 0.3", i, act.Confidence)
		}
	}
}
