// Package store archives processed sessions and their training examples in
// SQLite, so datasets can be re-exported and inspected after the fact.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkurahn/wayfind/dbopen"
	"github.com/mkurahn/wayfind/idgen"
	"github.com/mkurahn/wayfind/pipeline"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	task          TEXT NOT NULL DEFAULT '',
	events        INTEGER NOT NULL,
	journeys      INTEGER NOT NULL,
	total         INTEGER NOT NULL,
	high          INTEGER NOT NULL,
	medium        INTEGER NOT NULL,
	low           INTEGER NOT NULL,
	processed_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS examples (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	variant     TEXT NOT NULL,
	prompt      TEXT NOT NULL,
	completion  TEXT NOT NULL,
	score       REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_examples_session ON examples(session_id, position);
`

// Store wraps the archive database.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
	log   *slog.Logger
	now   func() time.Time
}

// Open opens (or creates) the archive at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing database. The schema must already be applied
// (dbopen.WithSchema(Schema) or Open take care of it).
func NewWithDB(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:    db,
		newID: idgen.Prefixed("ex_", idgen.Default),
		log:   logger,
		now:   time.Now,
	}
}

// Schema is exposed for tests that open their own database.
const Schema = schema

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SaveResult archives one processed session, replacing any previous archive
// of the same session id.
func (s *Store) SaveResult(ctx context.Context, res *pipeline.Result, task string, eventCount int) error {
	if res == nil {
		return fmt.Errorf("store: nil result")
	}
	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, res.SessionID); err != nil {
			return fmt.Errorf("clear previous: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, task, events, journeys, total, high, medium, low, processed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.SessionID, task, eventCount, res.Journeys,
			res.Report.Total, res.Report.High, res.Report.Medium, res.Report.Low,
			s.now().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		for i, ex := range res.Examples {
			score := 0.0
			if ex.Quality != nil {
				score = ex.Quality.Score
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO examples (id, session_id, position, kind, variant, prompt, completion, score)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				s.newID(), res.SessionID, i, string(ex.Kind), ex.Variant, ex.Prompt, ex.Completion, score,
			)
			if err != nil {
				return fmt.Errorf("insert example %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: save result: %w", err)
	}
	s.log.Debug("store: session archived", "session_id", res.SessionID, "examples", len(res.Examples))
	return nil
}

// SessionRecord is an archived session summary.
type SessionRecord struct {
	ID          string    `json:"session_id"`
	Task        string    `json:"task,omitempty"`
	Events      int       `json:"events"`
	Journeys    int       `json:"journeys"`
	Total       int       `json:"total"`
	High        int       `json:"high"`
	Medium      int       `json:"medium"`
	Low         int       `json:"low"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Session returns one archived session summary.
func (s *Store) Session(ctx context.Context, id string) (*SessionRecord, error) {
	var rec SessionRecord
	var ms int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, task, events, journeys, total, high, medium, low, processed_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Task, &rec.Events, &rec.Journeys, &rec.Total, &rec.High, &rec.Medium, &rec.Low, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	rec.ProcessedAt = time.UnixMilli(ms).UTC()
	return &rec, nil
}

// ExampleRecord is one archived example row.
type ExampleRecord struct {
	ID         string  `json:"id"`
	Position   int     `json:"position"`
	Kind       string  `json:"kind"`
	Variant    string  `json:"variant"`
	Prompt     string  `json:"prompt"`
	Completion string  `json:"completion"`
	Score      float64 `json:"score"`
}

// Examples returns a session's archived examples in output order.
func (s *Store) Examples(ctx context.Context, sessionID string) ([]ExampleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position, kind, variant, prompt, completion, score
		FROM examples WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list examples: %w", err)
	}
	defer rows.Close()

	var out []ExampleRecord
	for rows.Next() {
		var rec ExampleRecord
		if err := rows.Scan(&rec.ID, &rec.Position, &rec.Kind, &rec.Variant, &rec.Prompt, &rec.Completion, &rec.Score); err != nil {
			return nil, fmt.Errorf("store: scan example: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AggregateReport is the archive-wide dataset summary.
type AggregateReport struct {
	Sessions int `json:"sessions"`
	Examples int `json:"examples"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Report aggregates quality tiers across every archived session.
func (s *Store) Report(ctx context.Context) (AggregateReport, error) {
	var rep AggregateReport
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total), 0),
		       COALESCE(SUM(high), 0),
		       COALESCE(SUM(medium), 0),
		       COALESCE(SUM(low), 0)
		FROM sessions`,
	).Scan(&rep.Sessions, &rep.Examples, &rep.High, &rep.Medium, &rep.Low)
	if err != nil {
		return AggregateReport{}, fmt.Errorf("store: report: %w", err)
	}
	return rep, nil
}
