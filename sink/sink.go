// Package sink defines output backends for finished training datasets.
package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mkurahn/wayfind/quality"
	"github.com/mkurahn/wayfind/synth"
)

// Sink delivers processed session output to a backend (stdout JSONL,
// webhook, in-process callback).
type Sink interface {
	SendExample(ctx context.Context, sessionID string, ex *synth.Example) error
	SendReport(ctx context.Context, sessionID string, rep quality.Report) error
	Close() error
}

// envelope is the wire shape shared by the serializing sinks.
type envelope struct {
	Type      string `json:"type"` // example | report
	SessionID string `json:"session_id"`
	Data      any    `json:"data"`
}

// New builds a sink from its config name. w is only used by the stdout
// sink and may be nil for the default.
func New(typ, url string, w io.Writer, logger *slog.Logger) (Sink, error) {
	switch typ {
	case "", "stdout":
		return NewStdout(w), nil
	case "webhook":
		if url == "" {
			return nil, fmt.Errorf("sink: webhook requires a url")
		}
		return NewWebhook(url, WithWebhookLogger(logger)), nil
	default:
		return nil, fmt.Errorf("sink: unknown type %q", typ)
	}
}
