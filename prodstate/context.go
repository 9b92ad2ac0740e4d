package prodstate

import (
	"fmt"
	"strings"

	"github.com/mkurahn/wayfind/session"
)

// StateContext renders the accumulated configuration of one product as a
// text block for prompt synthesis. Empty when the product is unknown.
func (s *Store) StateContext(productID string) string {
	state := s.Product(productID)
	if state == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Product Configuration:\n")
	fmt.Fprintf(&b, "- Product: %s\n", orUnknown(state.Name, state.ID))
	if state.Category != "" {
		fmt.Fprintf(&b, "- Category: %s\n", state.Category)
	}
	if state.Price != "" {
		fmt.Fprintf(&b, "- Price: %s\n", state.Price)
	}
	if state.SelectedSize != "" {
		fmt.Fprintf(&b, "- Size: %s\n", state.SelectedSize)
	}
	if state.SelectedColor != "" {
		fmt.Fprintf(&b, "- Color: %s\n", state.SelectedColor)
	}
	if state.SelectedStyle != "" {
		fmt.Fprintf(&b, "- Style: %s\n", state.SelectedStyle)
	}

	missing := s.missing(state)
	if len(missing) > 0 {
		fmt.Fprintf(&b, "- Missing Selections: %s\n", joinKinds(missing))
	}
	fmt.Fprintf(&b, "- Cart Ready: %s\n", yesNo(state.ReadyForCart()))
	fmt.Fprintf(&b, "- Confidence: %.2f", state.Confidence)
	return b.String()
}

// EnhancedBusinessContext renders the business context of an event enriched
// with accumulated product state. Falls back to the raw annotations when the
// event is not product-scoped.
func (s *Store) EnhancedBusinessContext(ev *session.InteractionEvent) string {
	var b strings.Builder

	if biz := ev.Business; biz != nil {
		b.WriteString("Business Context:\n")
		if biz.ProductName != "" {
			fmt.Fprintf(&b, "- Product: %s\n", biz.ProductName)
		}
		if biz.Category != "" {
			fmt.Fprintf(&b, "- Category: %s\n", biz.Category)
		}
		if biz.Price != "" {
			fmt.Fprintf(&b, "- Price: %s\n", biz.Price)
		}
		if biz.FunnelStage != "" {
			fmt.Fprintf(&b, "- Funnel Stage: %s\n", biz.FunnelStage)
		}
		if biz.ConversionGoal != "" {
			fmt.Fprintf(&b, "- Conversion Goal: %s\n", biz.ConversionGoal)
		}
	}

	if id := ExtractProductID(ev); id != "" {
		if state := s.Product(id); state != nil {
			if sel := s.selectionSummary(state); sel != "" {
				fmt.Fprintf(&b, "- Selections So Far: %s\n", sel)
			}
			fmt.Fprintf(&b, "- Cart Ready: %s\n", yesNo(state.ReadyForCart()))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (s *Store) selectionSummary(state *ProductState) string {
	var parts []string
	if state.SelectedSize != "" {
		parts = append(parts, "size "+state.SelectedSize)
	}
	if state.SelectedColor != "" {
		parts = append(parts, "color "+state.SelectedColor)
	}
	if state.SelectedStyle != "" {
		parts = append(parts, "style "+state.SelectedStyle)
	}
	return strings.Join(parts, ", ")
}

func (s *Store) missing(state *ProductState) []SelectionKind {
	done := make(map[SelectionKind]bool)
	for _, k := range state.Completed() {
		done[k] = true
	}
	var out []SelectionKind
	for _, k := range state.Required {
		if !done[k] {
			out = append(out, k)
		}
	}
	return out
}

func joinKinds(kinds []SelectionKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orUnknown(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return "unknown"
}
