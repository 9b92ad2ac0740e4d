package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/mkurahn/wayfind/dbopen"
	"github.com/mkurahn/wayfind/pipeline"
	"github.com/mkurahn/wayfind/session"
	"github.com/mkurahn/wayfind/sink"
	"github.com/mkurahn/wayfind/store"
)

func shoppingPayload(t *testing.T) []byte {
	t.Helper()
	base := int64(1700000000000)
	mk := func(offset int64, id, text, stage string) session.InteractionEvent {
		return session.InteractionEvent{
			Timestamp: base + offset,
			Type:      session.EventClick,
			Element: session.Element{
				Tag:        "button",
				Text:       text,
				Attributes: map[string]string{"id": id},
				Box:        session.BoundingBox{X: 10, Y: 10, Width: 80, Height: 32},
			},
			Page: session.PageContext{
				URL:      "https://shop.example/products/p-100",
				PageType: "product",
			},
			Business: &session.BusinessContext{FunnelStage: stage},
		}
	}
	sess := session.Session{
		ID:   "sess-api",
		Task: "buy a trail running shoe",
		Events: []session.InteractionEvent{
			mk(0, "size-M", "M", "consideration"),
			mk(4000, "color-blue", "Blue", "evaluation"),
			mk(9000, "add-to-cart", "Add to Cart", "conversion"),
		},
	}
	b, err := json.Marshal(sess)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func newTestService(t *testing.T, sinks sink.Sink) (*Service, chi.Router) {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	st := store.NewWithDB(db, nil)
	svc := New(pipeline.New(nil, nil), st, sinks, nil)
	r := chi.NewRouter()
	svc.RegisterHTTP(r)
	return svc, r
}

func TestSubmitSession(t *testing.T) {
	var out bytes.Buffer
	sk, err := sink.New("stdout", "", &out, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, r := newTestService(t, sk)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(shoppingPayload(t)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.SessionID != "sess-api" {
		t.Errorf("session id %q", res.SessionID)
	}
	if res.Journeys == 0 || len(res.Examples) == 0 {
		t.Fatalf("no output: journeys=%d examples=%d", res.Journeys, len(res.Examples))
	}
	if out.Len() == 0 {
		t.Error("nothing delivered to sink")
	}
}

func TestSubmitBareEventArray(t *testing.T) {
	_, r := newTestService(t, nil)

	var sess session.Session
	if err := json.Unmarshal(shoppingPayload(t), &sess); err != nil {
		t.Fatal(err)
	}
	payload, err := json.Marshal(sess.Events)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("bare array rejected: %d: %s", rec.Code, rec.Body.String())
	}
	var res pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) == 0 {
		t.Error("no examples from bare array payload")
	}
}

func TestSubmitInvalidPayload(t *testing.T) {
	_, r := newTestService(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`"just a string"`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestSubmitEmptyEvents(t *testing.T) {
	_, r := newTestService(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"session_id":"s1","events":[]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestSessionLookup(t *testing.T) {
	_, r := newTestService(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(shoppingPayload(t)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-api", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status %d", rec.Code)
	}
	var sr store.SessionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &sr); err != nil {
		t.Fatal(err)
	}
	if sr.ID != "sess-api" || sr.Task != "buy a trail running shoe" {
		t.Errorf("unexpected record: %+v", sr)
	}
	if sr.Events != 3 {
		t.Errorf("events %d, want 3", sr.Events)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status %d, want 404", rec.Code)
	}
}

func TestExamplesLookup(t *testing.T) {
	_, r := newTestService(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(shoppingPayload(t)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-api/examples", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("examples status %d", rec.Code)
	}
	var body struct {
		SessionID string                `json:"session_id"`
		Examples  []store.ExampleRecord `json:"examples"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Examples) == 0 {
		t.Fatal("no archived examples")
	}
	for i, ex := range body.Examples {
		if ex.Position != i {
			t.Errorf("example %d has position %d", i, ex.Position)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope/examples", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status %d, want 404", rec.Code)
	}
}

func TestAggregateReport(t *testing.T) {
	_, r := newTestService(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(shoppingPayload(t)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status %d", rec.Code)
	}
	var rep store.AggregateReport
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Sessions != 1 {
		t.Errorf("sessions %d, want 1", rep.Sessions)
	}
	if rep.Examples == 0 {
		t.Error("no examples counted")
	}
}

func TestNoStoreEndpoints(t *testing.T) {
	svc := New(pipeline.New(nil, nil), nil, nil, nil)
	r := chi.NewRouter()
	svc.RegisterHTTP(r)

	for _, path := range []string{
		"/api/v1/sessions/s1",
		"/api/v1/sessions/s1/examples",
		"/api/v1/report",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status %d, want 404", path, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	_, r := newTestService(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status %d", rec.Code)
	}
}
