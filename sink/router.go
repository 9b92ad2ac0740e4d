package sink

import (
	"context"
	"log/slog"

	"github.com/mkurahn/wayfind/quality"
	"github.com/mkurahn/wayfind/synth"
)

// Router fans out to all configured sinks. One sink error does not block
// the others; errors are logged and the first encountered is returned.
type Router struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRouter creates a fan-out router delivering to all sinks.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

func (r *Router) SendExample(ctx context.Context, sessionID string, ex *synth.Example) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.SendExample(ctx, sessionID, ex); err != nil {
			r.logger.Warn("sink: send example failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) SendReport(ctx context.Context, sessionID string, rep quality.Report) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.SendReport(ctx, sessionID, rep); err != nil {
			r.logger.Warn("sink: send report failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) Close() error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
