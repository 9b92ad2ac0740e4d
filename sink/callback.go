package sink

import (
	"context"

	"github.com/mkurahn/wayfind/quality"
	"github.com/mkurahn/wayfind/synth"
)

// ExampleFunc is called for each example (in-process, zero serialisation).
type ExampleFunc func(ctx context.Context, sessionID string, ex *synth.Example) error

// ReportFunc is called for each session report.
type ReportFunc func(ctx context.Context, sessionID string, rep quality.Report) error

// Callback delivers output via Go function calls. When the pipeline and
// the fine-tuning submitter live in the same binary, examples are handed
// over as in-memory function calls with no serialisation overhead.
type Callback struct {
	onExample ExampleFunc
	onReport  ReportFunc
}

// NewCallback creates a Callback sink. Either handler may be nil.
func NewCallback(onExample ExampleFunc, onReport ReportFunc) *Callback {
	return &Callback{onExample: onExample, onReport: onReport}
}

func (c *Callback) SendExample(ctx context.Context, sessionID string, ex *synth.Example) error {
	if c.onExample != nil {
		return c.onExample(ctx, sessionID, ex)
	}
	return nil
}

func (c *Callback) SendReport(ctx context.Context, sessionID string, rep quality.Report) error {
	if c.onReport != nil {
		return c.onReport(ctx, sessionID, rep)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
