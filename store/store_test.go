package store

import (
	"context"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mkurahn/wayfind/dbopen"
	"github.com/mkurahn/wayfind/pipeline"
	"github.com/mkurahn/wayfind/quality"
	"github.com/mkurahn/wayfind/synth"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return NewWithDB(db, nil)
}

func testResult() *pipeline.Result {
	return &pipeline.Result{
		SessionID: "sess-1",
		Journeys:  2,
		Report:    quality.Report{Total: 2, High: 1, Medium: 1},
		Examples: []*synth.Example{
			{
				Prompt:     "Task: buy shoes",
				Completion: `{"action":"click"}`,
				Kind:       synth.KindJourney,
				Variant:    synth.VariantJourneyFlow,
				Quality:    &synth.Quality{Score: 0.9},
			},
			{
				Prompt:     "Task: buy shoes step",
				Completion: `{"action":"click","selector":"#add-to-cart"}`,
				Kind:       synth.KindSingleAction,
				Variant:    synth.VariantCanonical,
				Quality:    &synth.Quality{Score: 0.55},
			},
		},
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveResult(ctx, testResult(), "buy shoes", 12); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Session(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Task != "buy shoes" || rec.Events != 12 || rec.Journeys != 2 {
		t.Errorf("session record = %+v", rec)
	}
	if rec.Total != 2 || rec.High != 1 || rec.Medium != 1 {
		t.Errorf("report columns = %+v", rec)
	}
	if rec.ProcessedAt.IsZero() {
		t.Error("processed_at not set")
	}
}

func TestExamplesOrdered(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveResult(ctx, testResult(), "", 3); err != nil {
		t.Fatal(err)
	}
	examples, err := s.Examples(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 2 {
		t.Fatalf("got %d examples, want 2", len(examples))
	}
	if examples[0].Position != 0 || examples[1].Position != 1 {
		t.Errorf("positions = %d, %d", examples[0].Position, examples[1].Position)
	}
	if examples[0].Variant != synth.VariantJourneyFlow {
		t.Errorf("first variant = %q", examples[0].Variant)
	}
	if examples[0].Score != 0.9 {
		t.Errorf("first score = %v", examples[0].Score)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveResult(ctx, testResult(), "", 3); err != nil {
		t.Fatal(err)
	}

	res := testResult()
	res.Examples = res.Examples[:1]
	res.Report = quality.Report{Total: 1, High: 1}
	if err := s.SaveResult(ctx, res, "", 3); err != nil {
		t.Fatal(err)
	}

	examples, err := s.Examples(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 1 {
		t.Errorf("got %d examples after replace, want 1", len(examples))
	}
}

func TestSessionNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.Session(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAggregateReport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveResult(ctx, testResult(), "", 3); err != nil {
		t.Fatal(err)
	}
	other := testResult()
	other.SessionID = "sess-2"
	if err := s.SaveResult(ctx, other, "", 5); err != nil {
		t.Fatal(err)
	}

	rep, err := s.Report(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Sessions != 2 || rep.Examples != 4 || rep.High != 2 || rep.Medium != 2 {
		t.Errorf("aggregate = %+v", rep)
	}
}

func TestSaveNilResult(t *testing.T) {
	s := testStore(t)
	if err := s.SaveResult(context.Background(), nil, "", 0); err == nil {
		t.Fatal("nil result must error")
	}
}
