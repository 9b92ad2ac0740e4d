package journey

import (
	"strings"

	"github.com/mkurahn/wayfind/session"
)

// Conversion-intent goal labels the capture agent can annotate. A journey
// ending on one of these is complete.
var conversionGoals = map[string]bool{
	"add-to-cart":           true,
	"reach-checkout":        true,
	"booking-form-complete": true,
	"signup-form-complete":  true,
	"subscription-selected": true,
	"checkout-reached":      true,
}

// URL fragments and page types that mark the pre-payment boundary.
var conversionPageTokens = []string{"checkout", "payment", "billing", "cart"}

// Element phrases expressing conversion intent.
var conversionPhrases = []string{
	"add to cart", "add to bag", "add to basket",
	"checkout", "check out", "buy now", "book now", "reserve",
	"sign up", "signup", "subscribe", "place order",
	"get started", "start free trial",
}

// Complete reports whether an event terminates a coherent task attempt.
func Complete(ev *session.InteractionEvent) bool {
	if conversionGoals[ev.ConversionGoal()] {
		return true
	}

	pageType := strings.ToLower(ev.Page.PageType)
	urlLower := strings.ToLower(ev.Page.URL)
	for _, tok := range conversionPageTokens {
		if pageType == tok || strings.Contains(urlLower, tok) {
			return true
		}
	}

	text := strings.ToLower(ev.Element.Text)
	for _, phrase := range conversionPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	switch Stage(ev.FunnelStage()) {
	case StageConversion, StageRetention:
		return true
	}
	return false
}

// ConversionAction reports whether the event is a conversion-style action
// (used for the soft length cap): a conversion goal, a conversion phrase,
// or a conversion-stage annotation. Merely being on a cart page is not one.
func ConversionAction(ev *session.InteractionEvent) bool {
	if conversionGoals[ev.ConversionGoal()] {
		return true
	}
	text := strings.ToLower(ev.Element.Text)
	for _, phrase := range conversionPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	switch Stage(ev.FunnelStage()) {
	case StageConversion, StageRetention:
		return true
	}
	return false
}

// Validation/comparison markers for decision-point detection.
var validationTokens = []string{
	"review", "compare", "comparison", "rating", "ratings",
	"specs", "specification", "detail", "details", "size guide",
	"faq", "testimonial",
}

// DecisionPoint reports whether an event is a validation or comparison
// interaction: the shopper checking evidence before committing.
func DecisionPoint(ev *session.InteractionEvent) bool {
	if Stage(ev.FunnelStage()) == StageValidation {
		return true
	}
	text := strings.ToLower(ev.Element.Text)
	urlLower := strings.ToLower(ev.Page.URL)
	for _, tok := range validationTokens {
		if strings.Contains(text, tok) || strings.Contains(urlLower, tok) {
			return true
		}
	}
	return false
}
