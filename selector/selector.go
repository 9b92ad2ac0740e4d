// Package selector resolves the most trustworthy DOM selector for an
// interaction's target element and scores selector reliability.
//
// Reliability is the inverse of how many elements a selector matches on the
// page: exactly one match is perfect, zero is useless, many is ambiguous.
// Match counts come from a MatchCounter: a page-snapshot counter by default,
// a live browser probe when one is wired in, or the capture agent's recorded
// counts as a last resort.
package selector

import (
	"context"
	"log/slog"
	"strings"
)

// Reliability buckets by live match count.
const (
	reliabilityUnique    = 1.0
	reliabilityNone      = 0.0
	reliabilityFew       = 0.8 // 2-3 matches
	reliabilitySome      = 0.6 // 4-10 matches
	reliabilityAmbiguous = 0.3 // >10 matches
)

// ReliabilityForCount maps a match count to a reliability score.
func ReliabilityForCount(n int) float64 {
	switch {
	case n == 1:
		return reliabilityUnique
	case n <= 0:
		return reliabilityNone
	case n <= 3:
		return reliabilityFew
	case n <= 10:
		return reliabilitySome
	default:
		return reliabilityAmbiguous
	}
}

// MatchCounter counts how many elements a selector matches on the current
// page. Implementations: SnapshotCounter (parsed HTML), LiveProbe (rod).
type MatchCounter interface {
	Count(ctx context.Context, sel string) (int, error)
}

// Resolution is the resolver output for one element.
type Resolution struct {
	Best        string   `json:"best"`
	Reliability float64  `json:"reliability"`
	Backups     []string `json:"backups,omitempty"`

	// Trivial is true when the best selector is the generic bare-tag
	// fallback. Trivial resolutions are excluded from selector-anchored
	// single-action training examples.
	Trivial bool `json:"trivial"`
}

// Config configures a Resolver.
type Config struct {
	// TestAttributes are the data attributes checked for automation hooks,
	// in preference order.
	TestAttributes []string

	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if len(c.TestAttributes) == 0 {
		c.TestAttributes = []string{"data-testid", "data-test", "data-cy", "data-qa"}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Resolver picks the best selector for an element and ranks fallbacks.
// Pure with respect to the page: it never mutates anything.
type Resolver struct {
	cfg Config
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	cfg.defaults()
	return &Resolver{cfg: cfg}
}

// candidate is a selector with its preference rank (lower is better).
type candidate struct {
	sel  string
	rank int
}

// Preference ranks, best first. XPath and the full structural CSS path are
// always last-resort fallbacks regardless of their match counts.
const (
	rankID = iota
	rankTestAttr
	rankAria
	rankName
	rankStableClass
	rankTagAttr
	rankTag
	rankStructural // full CSS path / XPath from the capture agent
)

// Resolve picks the best selector for the event's target element. The
// counter may be nil; in that case the capture agent's recorded match
// counts (or reliability scores) are used, and candidates without either
// are assumed unique.
func (r *Resolver) Resolve(ctx context.Context, in Input) Resolution {
	cands := r.candidates(in)
	if len(cands) == 0 {
		return Resolution{}
	}

	scored := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		rel := r.reliability(ctx, in, c.sel)
		scored = append(scored, scoredCandidate{candidate: c, reliability: rel})
	}

	best := pickBest(scored)
	if best.sel == "" {
		return Resolution{}
	}

	var backups []string
	for _, s := range orderBackups(scored, best.sel) {
		backups = append(backups, s)
	}

	return Resolution{
		Best:        best.sel,
		Reliability: best.reliability,
		Backups:     backups,
		Trivial:     best.rank >= rankTag,
	}
}

type scoredCandidate struct {
	candidate
	reliability float64
}

// pickBest returns the highest-preference candidate that still has usable
// reliability. A better-ranked candidate loses to a worse-ranked one only
// when it matches nothing at all.
func pickBest(scored []scoredCandidate) scoredCandidate {
	var best scoredCandidate
	best.rank = rankStructural + 1
	for _, s := range scored {
		if s.reliability <= reliabilityNone {
			continue
		}
		if s.rank < best.rank || (s.rank == best.rank && s.reliability > best.reliability) {
			best = s
		}
	}
	return best
}

// orderBackups returns the remaining candidates ordered by rank then
// reliability, so SelectorSet's non-increasing-reliability invariant holds
// within each preference tier.
func orderBackups(scored []scoredCandidate, best string) []string {
	// Insertion sort; candidate lists are tiny.
	ordered := make([]scoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.sel == best || s.reliability <= reliabilityNone {
			continue
		}
		pos := len(ordered)
		for i, o := range ordered {
			if s.rank < o.rank || (s.rank == o.rank && s.reliability > o.reliability) {
				pos = i
				break
			}
		}
		ordered = append(ordered[:pos], append([]scoredCandidate{s}, ordered[pos:]...)...)
	}
	out := make([]string, len(ordered))
	for i, o := range ordered {
		out[i] = o.sel
	}
	return out
}

// reliability resolves a selector's reliability from, in order: the live
// counter, the capture agent's match counts, the capture agent's scores.
// With no information at all the selector is assumed unique.
func (r *Resolver) reliability(ctx context.Context, in Input, sel string) float64 {
	if in.Counter != nil {
		n, err := in.Counter.Count(ctx, sel)
		if err == nil {
			return ReliabilityForCount(n)
		}
		r.cfg.Logger.Debug("selector: count failed, falling back", "selector", sel, "error", err)
	}
	if in.Set != nil {
		if n, ok := in.Set.MatchCounts[sel]; ok {
			return ReliabilityForCount(n)
		}
		if rel, ok := in.Set.Reliability[sel]; ok {
			return rel
		}
	}
	return reliabilityUnique
}

// isXPath reports whether a capture-agent candidate is an XPath expression.
func isXPath(sel string) bool {
	return strings.HasPrefix(sel, "/") || strings.HasPrefix(sel, "(")
}

// isStructuralPath reports whether a candidate looks like a full structural
// CSS path (child combinators / nth-child chains).
func isStructuralPath(sel string) bool {
	return strings.Contains(sel, ">") || strings.Contains(sel, ":nth-child")
}
