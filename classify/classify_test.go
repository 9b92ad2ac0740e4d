package classify

import (
	"strings"
	"testing"

	"github.com/mkurahn/wayfind/journey"
	"github.com/mkurahn/wayfind/session"
)

func jny(events ...session.InteractionEvent) *journey.Journey {
	return &journey.Journey{Events: events, Kind: journey.KindPrimary}
}

func shopEvent(text, pageType, url, stage, goal string) session.InteractionEvent {
	e := session.InteractionEvent{
		Type:    session.EventClick,
		Element: session.Element{Tag: "button", Text: text},
		Page:    session.PageContext{PageType: pageType, URL: url},
	}
	if stage != "" || goal != "" {
		e.Business = &session.BusinessContext{FunnelStage: stage, ConversionGoal: goal}
	}
	return e
}

func TestClassify_EcommerceHighIntent(t *testing.T) {
	j := jny(
		shopEvent("view product", "product", "https://shop.test/product/42", "consideration", ""),
		shopEvent("Add to Cart", "product", "https://shop.test/product/42", "conversion", "add-to-cart"),
	)
	res := Classify(j, nil)

	if res.Vertical != "ecommerce" {
		t.Fatalf("vertical: got %q", res.Vertical)
	}
	if res.Type != "ecommerce-high-intent-purchase" {
		t.Fatalf("type: got %q", res.Type)
	}
	if res.Goal != "add product to cart" {
		t.Fatalf("goal: got %q", res.Goal)
	}
}

func TestClassify_EcommerceResearchValidation(t *testing.T) {
	j := jny(
		shopEvent("read reviews", "product", "https://shop.test/product/42/reviews", "validation", ""),
		shopEvent("Add to Cart", "product", "https://shop.test/product/42", "conversion", "add-to-cart"),
	)
	j.DecisionPoints = []int{0}
	res := Classify(j, nil)

	if res.Type != "ecommerce-research-validation-purchase" {
		t.Fatalf("type: got %q", res.Type)
	}
}

func TestClassify_OrderedTableFirstMatchWins(t *testing.T) {
	// A journey with both e-commerce and research cues must classify as
	// e-commerce: it sits earlier in the table.
	j := jny(
		shopEvent("compare models", "product", "https://shop.test/product/42", "", ""),
		shopEvent("view cart", "cart", "https://shop.test/cart", "", ""),
	)
	res := Classify(j, nil)
	if res.Vertical != "ecommerce" {
		t.Fatalf("vertical: got %q, want ecommerce", res.Vertical)
	}
}

func TestClassify_SaaSTrial(t *testing.T) {
	j := jny(
		shopEvent("See pricing", "", "https://app.test/pricing", "consideration", ""),
		shopEvent("Start free trial", "", "https://app.test/signup", "conversion", "signup-form-complete"),
	)
	res := Classify(j, nil)
	if res.Vertical != "saas" {
		t.Fatalf("vertical: got %q", res.Vertical)
	}
	if res.Type != "saas-trial-signup" {
		t.Fatalf("type: got %q", res.Type)
	}
	if res.Goal != "complete the signup form" {
		t.Fatalf("goal: got %q", res.Goal)
	}
}

func TestClassify_FallbackLabels(t *testing.T) {
	j := jny(
		shopEvent("click something", "", "https://example.test/a", "", ""),
		shopEvent("click elsewhere", "", "https://example.test/b", "", ""),
	)
	res := Classify(j, nil)
	if res.Type != FallbackType {
		t.Fatalf("type: got %q, want %q", res.Type, FallbackType)
	}
	if res.Goal != FallbackGoal {
		t.Fatalf("goal: got %q, want %q", res.Goal, FallbackGoal)
	}
	if res.Intent != FallbackIntent {
		t.Fatalf("intent: got %q, want %q", res.Intent, FallbackIntent)
	}
}

func TestClassify_GoalStaysPrePayment(t *testing.T) {
	// Even a journey reaching checkout resolves to "reach the checkout
	// page", never a completed purchase.
	j := jny(
		shopEvent("view cart", "cart", "https://shop.test/cart", "conversion", ""),
		shopEvent("Checkout", "checkout", "https://shop.test/checkout", "conversion", "checkout-reached"),
	)
	res := Classify(j, nil)
	if res.Goal != "reach the checkout page" {
		t.Fatalf("goal: got %q", res.Goal)
	}
	if strings.Contains(res.Goal, "purchase") || strings.Contains(res.Goal, "pay") {
		t.Fatalf("goal must stay pre-payment: %q", res.Goal)
	}
}

func TestExtractIntent_Priorities(t *testing.T) {
	j := jny(
		shopEvent("search", "search", "https://shop.test/search", "", ""),
		shopEvent("view result", "product", "https://shop.test/product/42", "", ""),
	)

	// 1. Session task wins.
	sess := &session.Session{Task: "buy running shoes under $100"}
	if got := Classify(j, sess).Intent; got != "buy running shoes under $100" {
		t.Fatalf("task intent: got %q", got)
	}

	// 2. Search query from form state.
	j.Events[0].State = &session.StateSnapshot{FormState: map[string]string{"q": "running shoes"}}
	if got := Classify(j, nil).Intent; got != "find: running shoes" {
		t.Fatalf("query intent: got %q", got)
	}

	// 3. Product category.
	j.Events[0].State = nil
	j.Events[1].Business = &session.BusinessContext{Category: "Footwear"}
	if got := Classify(j, nil).Intent; got != "browse footwear" {
		t.Fatalf("category intent: got %q", got)
	}

	// 4. Vertical generic phrase.
	j.Events[1].Business = nil
	if got := Classify(j, nil).Intent; got != intentByVertical["ecommerce"] {
		t.Fatalf("vertical intent: got %q", got)
	}
}

func TestApply_WritesOntoJourney(t *testing.T) {
	j := jny(
		shopEvent("view product", "product", "https://shop.test/product/42", "consideration", ""),
		shopEvent("Add to Cart", "product", "https://shop.test/product/42", "conversion", "add-to-cart"),
	)
	Apply(j, nil)
	if j.Type == "" || j.Goal == "" || j.Intent == "" {
		t.Fatalf("apply left fields empty: %+v", j)
	}
}
