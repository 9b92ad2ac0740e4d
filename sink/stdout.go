package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/mkurahn/wayfind/quality"
	"github.com/mkurahn/wayfind/synth"
)

// Stdout writes JSON lines to an io.Writer (default os.Stdout). One line
// per example keeps the output directly usable as a JSONL training file.
type Stdout struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewStdout creates a Stdout sink. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w, enc: json.NewEncoder(w)}
}

func (s *Stdout) SendExample(_ context.Context, sessionID string, ex *synth.Example) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope{Type: "example", SessionID: sessionID, Data: ex})
}

func (s *Stdout) SendReport(_ context.Context, sessionID string, rep quality.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope{Type: "report", SessionID: sessionID, Data: rep})
}

func (s *Stdout) Close() error { return nil }
