// Package classify assigns a journey its type (vertical + sub-pattern), an
// inferred goal, and an inferred user intent.
//
// Matchers are ordered lists of (predicate, label) pairs over feature
// sets. New verticals and patterns are data, not control flow.
package classify

import (
	"strings"

	"github.com/mkurahn/wayfind/journey"
)

// Features are the journey-level sets the rule tables match against.
// All strings are lower-cased at build time.
type Features struct {
	PageTypes  map[string]bool
	Goals      map[string]bool
	Categories map[string]bool
	Texts      []string
	URLs       []string
	Stages     map[journey.Stage]bool
}

// BuildFeatures collects feature sets from a journey's events.
func BuildFeatures(j *journey.Journey) Features {
	f := Features{
		PageTypes:  make(map[string]bool),
		Goals:      make(map[string]bool),
		Categories: make(map[string]bool),
		Stages:     make(map[journey.Stage]bool),
	}
	for i := range j.Events {
		ev := &j.Events[i]
		if pt := strings.ToLower(ev.Page.PageType); pt != "" {
			f.PageTypes[pt] = true
		}
		if g := strings.ToLower(ev.ConversionGoal()); g != "" {
			f.Goals[g] = true
		}
		if b := ev.Business; b != nil && b.Category != "" {
			f.Categories[strings.ToLower(b.Category)] = true
		}
		if t := strings.ToLower(ev.Element.Text); t != "" {
			f.Texts = append(f.Texts, t)
		}
		if u := strings.ToLower(ev.Page.URL); u != "" {
			f.URLs = append(f.URLs, u)
		}
		if s := journey.Stage(ev.FunnelStage()); journey.StageIndex(s) >= 0 {
			f.Stages[s] = true
		}
	}
	return f
}

// AnyText reports whether any element text contains any of the tokens.
func (f Features) AnyText(tokens ...string) bool {
	return anyContains(f.Texts, tokens)
}

// AnyURL reports whether any URL contains any of the tokens.
func (f Features) AnyURL(tokens ...string) bool {
	return anyContains(f.URLs, tokens)
}

// AnyPage reports whether any page type matches any of the tokens exactly.
func (f Features) AnyPage(types ...string) bool {
	for _, t := range types {
		if f.PageTypes[t] {
			return true
		}
	}
	return false
}

// AnyGoal reports whether any goal label contains any of the tokens.
func (f Features) AnyGoal(tokens ...string) bool {
	for g := range f.Goals {
		for _, tok := range tokens {
			if strings.Contains(g, tok) {
				return true
			}
		}
	}
	return false
}

// AnyCue is the broad matcher: text, URL, or page type.
func (f Features) AnyCue(tokens ...string) bool {
	if f.AnyText(tokens...) || f.AnyURL(tokens...) {
		return true
	}
	for pt := range f.PageTypes {
		for _, tok := range tokens {
			if strings.Contains(pt, tok) {
				return true
			}
		}
	}
	return false
}

// HasStage reports whether the journey touched a stage.
func (f Features) HasStage(s journey.Stage) bool { return f.Stages[s] }

func anyContains(haystacks []string, tokens []string) bool {
	for _, h := range haystacks {
		for _, tok := range tokens {
			if strings.Contains(h, tok) {
				return true
			}
		}
	}
	return false
}
