// Package prodstate accumulates product-configuration state across one
// session's interactions: which size, color, and style have been chosen for
// each product, and whether the configuration is complete enough to add to
// cart.
//
// A Store is session-scoped. It is never shared across sessions; callers
// create one per session (or call Reset between sessions) so state cannot
// leak between captures processed in the same process.
package prodstate

import (
	"log/slog"
	"sort"

	"github.com/mkurahn/wayfind/session"
)

// SelectionKind is a variant dimension the shopper can choose.
type SelectionKind string

const (
	KindSize     SelectionKind = "size"
	KindColor    SelectionKind = "color"
	KindStyle    SelectionKind = "style"
	KindQuantity SelectionKind = "quantity"
)

// SelectionStep is one accepted selection, in the order it happened.
type SelectionStep struct {
	Step       int           `json:"step"`
	Kind       SelectionKind `json:"kind"`
	Value      string        `json:"value"`
	Confidence float64       `json:"confidence"`
	EventID    string        `json:"event_id,omitempty"`
	Timestamp  int64         `json:"timestamp"`
}

// ProductState is the accumulated configuration for one product. Selections
// are appended with a history entry, never silently overwritten; the latest
// entry per kind wins for the current value.
type ProductState struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Price    string `json:"price,omitempty"`

	SelectedSize  string `json:"selected_size,omitempty"`
	SelectedColor string `json:"selected_color,omitempty"`
	SelectedStyle string `json:"selected_style,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`

	SelectionHistory []SelectionStep `json:"selection_history,omitempty"`

	Required   []SelectionKind `json:"required"`
	Confidence float64         `json:"confidence"`
}

// Completed returns the set of selection kinds that have a value.
func (p *ProductState) Completed() []SelectionKind {
	var out []SelectionKind
	if p.SelectedSize != "" {
		out = append(out, KindSize)
	}
	if p.SelectedColor != "" {
		out = append(out, KindColor)
	}
	if p.SelectedStyle != "" {
		out = append(out, KindStyle)
	}
	if p.Quantity > 0 {
		out = append(out, KindQuantity)
	}
	return out
}

// ReadyForCart reports whether every required selection has been made.
func (p *ProductState) ReadyForCart() bool {
	done := make(map[SelectionKind]bool)
	for _, k := range p.Completed() {
		done[k] = true
	}
	for _, k := range p.Required {
		if !done[k] {
			return false
		}
	}
	return true
}

// Config configures a Store.
type Config struct {
	// Required is the selection set a product must complete before it is
	// cart-ready. Site/category dependent; default {size, color}.
	Required []SelectionKind

	// Thresholds holds the per-kind minimum detection confidence.
	Thresholds map[SelectionKind]float64

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if len(c.Required) == 0 {
		c.Required = []SelectionKind{KindSize, KindColor}
	}
	if c.Thresholds == nil {
		c.Thresholds = map[SelectionKind]float64{}
	}
	if _, ok := c.Thresholds[KindSize]; !ok {
		c.Thresholds[KindSize] = 0.7
	}
	if _, ok := c.Thresholds[KindColor]; !ok {
		c.Thresholds[KindColor] = 0.6
	}
	if _, ok := c.Thresholds[KindStyle]; !ok {
		c.Thresholds[KindStyle] = 0.65
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Store holds per-product state for one session, keyed by product id.
type Store struct {
	cfg      Config
	matcher  *PatternMatcher
	products map[string]*ProductState
}

// NewStore creates an empty session-scoped store.
func NewStore(cfg Config) *Store {
	cfg.defaults()
	return &Store{
		cfg:      cfg,
		matcher:  NewPatternMatcher(),
		products: make(map[string]*ProductState),
	}
}

// Reset clears all product state. Call between sessions when reusing a Store.
func (s *Store) Reset() {
	s.products = make(map[string]*ProductState)
}

// Product returns the state for a product id, or nil when unseen.
func (s *Store) Product(id string) *ProductState {
	return s.products[id]
}

// Products returns all states ordered by product id for determinism.
func (s *Store) Products() []*ProductState {
	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*ProductState, len(ids))
	for i, id := range ids {
		out[i] = s.products[id]
	}
	return out
}

// ProcessInteraction folds one event into the store. Events without a
// resolvable product identifier are a no-op; that is the normal case for
// non-product interactions, not an error.
func (s *Store) ProcessInteraction(ev *session.InteractionEvent) {
	id := ExtractProductID(ev)
	if id == "" {
		return
	}

	state, ok := s.products[id]
	if !ok {
		state = &ProductState{ID: id, Required: s.cfg.Required}
		s.products[id] = state
	}
	s.describeProduct(state, ev)

	for _, det := range s.matcher.Detect(ev) {
		min, ok := s.cfg.Thresholds[det.Kind]
		if !ok {
			min = 0.7
		}
		if det.Confidence < min {
			s.cfg.Logger.Debug("prodstate: detection below threshold",
				"product", id, "kind", det.Kind, "value", det.Value,
				"confidence", det.Confidence)
			continue
		}
		s.apply(state, det, ev)
	}

	state.Confidence = s.confidence(state)
}

// apply appends a selection step and updates the current value.
func (s *Store) apply(state *ProductState, det Detection, ev *session.InteractionEvent) {
	state.SelectionHistory = append(state.SelectionHistory, SelectionStep{
		Step:       len(state.SelectionHistory) + 1,
		Kind:       det.Kind,
		Value:      det.Value,
		Confidence: det.Confidence,
		EventID:    ev.ID,
		Timestamp:  ev.Timestamp,
	})
	switch det.Kind {
	case KindSize:
		state.SelectedSize = det.Value
	case KindColor:
		state.SelectedColor = det.Value
	case KindStyle:
		state.SelectedStyle = det.Value
	}
}

// describeProduct fills identity fields from the event's business context.
// First sighting wins; later events only fill gaps.
func (s *Store) describeProduct(state *ProductState, ev *session.InteractionEvent) {
	b := ev.Business
	if b == nil {
		return
	}
	if state.Name == "" {
		state.Name = b.ProductName
	}
	if state.Category == "" {
		state.Category = b.Category
	}
	if state.Price == "" {
		state.Price = b.Price
	}
}

// Confidence weights. Completeness dominates; history depth breaks ties
// between a product configured in one shot and one configured deliberately.
const (
	completenessWeight = 0.7
	historyWeight      = 0.3
	historySaturation  = 4 // steps at which history contributes fully
)

func (s *Store) confidence(state *ProductState) float64 {
	completeness := 1.0
	if len(state.Required) > 0 {
		done := make(map[SelectionKind]bool)
		for _, k := range state.Completed() {
			done[k] = true
		}
		n := 0
		for _, k := range state.Required {
			if done[k] {
				n++
			}
		}
		completeness = float64(n) / float64(len(state.Required))
	}

	depth := float64(len(state.SelectionHistory)) / historySaturation
	if depth > 1 {
		depth = 1
	}

	return completenessWeight*completeness + historyWeight*depth
}
