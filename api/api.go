// Package api exposes the session pipeline over HTTP. Sessions are
// submitted as JSON capture payloads; processing is synchronous and the
// resulting examples are returned in the response, archived when a store
// is configured, and fanned out to the configured sinks.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkurahn/wayfind/pipeline"
	"github.com/mkurahn/wayfind/session"
	"github.com/mkurahn/wayfind/sink"
	"github.com/mkurahn/wayfind/store"
)

// Service handles session ingestion and dataset queries.
type Service struct {
	pipe   *pipeline.Pipeline
	store  *store.Store // nil when archival is disabled
	sinks  sink.Sink    // nil when no sinks are configured
	logger *slog.Logger
}

// New creates the HTTP service. store and sinks may be nil.
func New(pipe *pipeline.Pipeline, st *store.Store, sinks sink.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pipe: pipe, store: st, sinks: sinks, logger: logger}
}

// RegisterHTTP mounts the service routes on the given router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Post("/api/v1/sessions", s.handleSubmit)
	r.Get("/api/v1/sessions/{session_id}", s.handleSession)
	r.Get("/api/v1/sessions/{session_id}/examples", s.handleExamples)
	r.Get("/api/v1/report", s.handleReport)
	r.Get("/healthz", s.handleHealth)
}

// Close releases the service's resources.
func (s *Service) Close() error {
	var first error
	if s.sinks != nil {
		if err := s.sinks.Close(); err != nil {
			first = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// handleSubmit processes a capture payload end to end. Both payload shapes
// session.Parse accepts work here, matching the CLI and MCP transports.
// POST /api/v1/sessions
func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	sess, err := session.Parse(body)
	if err != nil {
		http.Error(w, "Invalid session payload", http.StatusBadRequest)
		return
	}
	if len(sess.Events) == 0 {
		http.Error(w, "events required", http.StatusBadRequest)
		return
	}

	res, err := s.pipe.Process(r.Context(), sess)
	if err != nil {
		s.logger.Error("Session processing failed", "session_id", sess.ID, "error", err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	if s.store != nil {
		if err := s.store.SaveResult(r.Context(), res, sess.Task, len(sess.Events)); err != nil {
			s.logger.Error("Failed to archive session", "session_id", res.SessionID, "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
	}

	if s.sinks != nil {
		for _, ex := range res.Examples {
			if err := s.sinks.SendExample(r.Context(), res.SessionID, ex); err != nil {
				s.logger.Warn("Sink delivery failed", "session_id", res.SessionID, "error", err)
				break
			}
		}
		if err := s.sinks.SendReport(r.Context(), res.SessionID, res.Report); err != nil {
			s.logger.Warn("Report delivery failed", "session_id", res.SessionID, "error", err)
		}
	}

	s.logger.Info("Session processed",
		"session_id", res.SessionID,
		"events", len(sess.Events),
		"journeys", res.Journeys,
		"examples", len(res.Examples))

	writeJSON(w, http.StatusOK, res)
}

// handleSession returns the archived summary for one session.
// GET /api/v1/sessions/{session_id}
func (s *Service) handleSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Archival not enabled", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "session_id")

	rec, err := s.store.Session(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load session", "session_id", id, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleExamples returns the archived examples for one session, in
// synthesis order.
// GET /api/v1/sessions/{session_id}/examples
func (s *Service) handleExamples(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Archival not enabled", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "session_id")

	if _, err := s.store.Session(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	} else if err != nil {
		s.logger.Error("Failed to load session", "session_id", id, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	recs, err := s.store.Examples(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load examples", "session_id", id, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"examples":   recs,
	})
}

// handleReport returns aggregate counts across all archived sessions.
// GET /api/v1/report
func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Archival not enabled", http.StatusNotFound)
		return
	}
	rep, err := s.store.Report(r.Context())
	if err != nil {
		s.logger.Error("Failed to build report", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleHealth reports liveness.
// GET /healthz
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
