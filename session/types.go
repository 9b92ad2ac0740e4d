// Package session defines the interaction-event data model produced by the
// capture agent, plus payload decoding for ingested session bodies.
//
// Events are immutable once decoded. A Session owns its events; everything
// downstream (segmentation, classification, synthesis) works on read-only
// views of the event slice.
package session

import "time"

// EventType is the kind of user action an InteractionEvent records.
type EventType string

const (
	EventClick      EventType = "CLICK"
	EventInput      EventType = "INPUT"
	EventFormSubmit EventType = "FORM_SUBMIT"
	EventFocus      EventType = "FOCUS"
	EventKeyPress   EventType = "KEY_PRESS"
	EventNavigation EventType = "NAVIGATION"
)

// BoundingBox is the target element's layout rectangle in CSS pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the click-point coordinates for the box.
func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// NearbyElement describes an element spatially close to the target.
type NearbyElement struct {
	Tag       string  `json:"tag"`
	Text      string  `json:"text,omitempty"`
	Selector  string  `json:"selector,omitempty"`
	Distance  float64 `json:"distance"`
	Direction string  `json:"direction"` // above | below | left | right
}

// Element describes the event's target element. The capture agent guarantees
// at least Tag and Box even when all semantic attributes are absent.
type Element struct {
	Tag        string            `json:"tag"`
	Text       string            `json:"text,omitempty"`
	Value      string            `json:"value,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Box        BoundingBox       `json:"box"`
	Nearby     []NearbyElement   `json:"nearby,omitempty"`
	HTML       string            `json:"html,omitempty"` // outer HTML fragment
}

// Attr returns an attribute value, or "" when absent.
func (e Element) Attr(name string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[name]
}

// PageContext describes the page the event occurred on.
type PageContext struct {
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	PageType  string   `json:"page_type,omitempty"` // product | category | cart | checkout | search | ...
	Ancestors []string `json:"ancestors,omitempty"` // tag chain from root to target
	HTML      string   `json:"html,omitempty"`      // page snapshot, optional
}

// StateSnapshot captures before/after state around the event plus computed
// deltas. FormState mirrors the visible form fields after the event.
type StateSnapshot struct {
	Before    map[string]string `json:"before,omitempty"`
	After     map[string]string `json:"after,omitempty"`
	Changes   map[string]string `json:"changes,omitempty"`
	FormState map[string]string `json:"form_state,omitempty"`
}

// BusinessContext carries optional e-commerce annotations from the capture
// agent. FunnelStage uses the canonical stage names (see journey package).
type BusinessContext struct {
	ProductID      string `json:"product_id,omitempty"`
	ProductName    string `json:"product_name,omitempty"`
	Category       string `json:"category,omitempty"`
	Price          string `json:"price,omitempty"`
	FunnelStage    string `json:"funnel_stage,omitempty"`
	ConversionGoal string `json:"conversion_goal,omitempty"`
}

// VisualContext describes what the user could see when the event fired.
type VisualContext struct {
	ViewportWidth  int  `json:"viewport_width,omitempty"`
	ViewportHeight int  `json:"viewport_height,omitempty"`
	ScrollX        int  `json:"scroll_x,omitempty"`
	ScrollY        int  `json:"scroll_y,omitempty"`
	Visible        bool `json:"visible"`
	AboveFold      bool `json:"above_fold"`
}

// AccessibilityContext carries the ARIA surface of the target element.
type AccessibilityContext struct {
	Role      string `json:"role,omitempty"`
	Label     string `json:"label,omitempty"`
	Described string `json:"described,omitempty"`
	TabIndex  int    `json:"tab_index,omitempty"`
	Focusable bool   `json:"focusable"`
}

// TechnicalContext carries timing, network, and error information observed
// around the event.
type TechnicalContext struct {
	LoadTimeMs   int               `json:"load_time_ms,omitempty"`
	RequestCount int               `json:"request_count,omitempty"`
	NetworkState string            `json:"network_state,omitempty"` // idle | busy
	Errors       []string          `json:"errors,omitempty"`
	Analytics    map[string]string `json:"analytics,omitempty"`
	SEO          map[string]string `json:"seo,omitempty"` // meta tags of interest
}

// UserContext carries coarse session/device information.
type UserContext struct {
	SessionAge time.Duration `json:"session_age,omitempty"`
	Device     string        `json:"device,omitempty"` // desktop | mobile | tablet
	Returning  bool          `json:"returning"`
	UserAgent  string        `json:"user_agent,omitempty"`
}

// SelectorSet is the capture agent's candidate selectors for the target,
// with per-candidate reliability in [0,1]. Alternatives are ordered by
// non-increasing reliability. MatchCounts, when present, holds the number
// of live elements each candidate matched at capture time.
type SelectorSet struct {
	Primary      string             `json:"primary,omitempty"`
	Alternatives []string           `json:"alternatives,omitempty"`
	Reliability  map[string]float64 `json:"reliability,omitempty"`
	MatchCounts  map[string]int     `json:"match_counts,omitempty"`
}

// Candidates returns primary plus alternatives in order, without duplicates.
func (s *SelectorSet) Candidates() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.Alternatives)+1)
	var out []string
	add := func(sel string) {
		if sel == "" || seen[sel] {
			return
		}
		seen[sel] = true
		out = append(out, sel)
	}
	add(s.Primary)
	for _, a := range s.Alternatives {
		add(a)
	}
	return out
}

// InteractionEvent is one captured user action. Timestamp is epoch
// milliseconds as emitted by the capture agent.
type InteractionEvent struct {
	ID            string                `json:"id,omitempty"`
	Timestamp     int64                 `json:"timestamp"`
	Type          EventType             `json:"type"`
	Element       Element               `json:"element"`
	Page          PageContext           `json:"page"`
	State         *StateSnapshot        `json:"state,omitempty"`
	Business      *BusinessContext      `json:"business,omitempty"`
	Visual        *VisualContext        `json:"visual,omitempty"`
	Accessibility *AccessibilityContext `json:"accessibility,omitempty"`
	Technical     *TechnicalContext     `json:"technical,omitempty"`
	User          *UserContext          `json:"user,omitempty"`
	Selectors     *SelectorSet          `json:"selectors,omitempty"`
}

// Time returns the event timestamp as a time.Time (UTC).
func (e *InteractionEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// FunnelStage returns the annotated funnel stage, or "" when absent.
func (e *InteractionEvent) FunnelStage() string {
	if e.Business == nil {
		return ""
	}
	return e.Business.FunnelStage
}

// ConversionGoal returns the annotated conversion goal, or "" when absent.
func (e *InteractionEvent) ConversionGoal() string {
	if e.Business == nil {
		return ""
	}
	return e.Business.ConversionGoal
}

// Session is one completed capture session. Task, when present, is the
// externally supplied task title/description and is the highest-priority
// source of user intent.
type Session struct {
	ID     string             `json:"session_id"`
	Task   string             `json:"task,omitempty"`
	Events []InteractionEvent `json:"events"`
}
