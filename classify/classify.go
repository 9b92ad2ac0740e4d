package classify

import (
	"strings"

	"github.com/mkurahn/wayfind/journey"
	"github.com/mkurahn/wayfind/session"
)

// Result is the full classification for one journey.
type Result struct {
	Vertical string `json:"vertical,omitempty"`
	Type     string `json:"journey_type"`
	Goal     string `json:"journey_goal"`
	Intent   string `json:"user_intent"`
}

// Classify computes the journey type, goal, and intent. The session, when
// available, supplies the externally provided task description for intent.
func Classify(j *journey.Journey, sess *session.Session) Result {
	f := BuildFeatures(j)
	vertical, journeyType := ClassifyType(f, j)
	return Result{
		Vertical: vertical,
		Type:     journeyType,
		Goal:     ExtractGoal(f, j, vertical),
		Intent:   ExtractIntent(f, j, sess, vertical),
	}
}

// Apply classifies the journey and writes the results onto it.
func Apply(j *journey.Journey, sess *session.Session) Result {
	res := Classify(j, sess)
	j.Type = res.Type
	j.Goal = res.Goal
	j.Intent = res.Intent
	return res
}

// goalByLabel normalizes explicit conversion-goal labels to a realistic,
// pre-payment endpoint. Goals never promise a completed purchase.
var goalByLabel = map[string]string{
	"add-to-cart":           "add product to cart",
	"reach-checkout":        "reach the checkout page",
	"checkout-reached":      "reach the checkout page",
	"booking-form-complete": "complete the booking form",
	"signup-form-complete":  "complete the signup form",
	"subscription-selected": "select a subscription plan",
}

// goalByVertical is the cue-based fallback per vertical.
var goalByVertical = map[string]string{
	"ecommerce":       "add product to cart",
	"saas":            "select a subscription plan",
	"booking":         "complete the booking form",
	"lead-generation": "submit the contact form",
	"research":        "compare the candidate options",
	"financial":       "reach the application form",
	"education":       "reach the enrollment form",
	"healthcare":      "reach the appointment form",
	"real-estate":     "request a property viewing",
	"entertainment":   "reach the content or ticket page",
	"local-business":  "find contact or location details",
}

// ExtractGoal prefers the last event's explicit goal label, then infers
// from vertical and cues, always resolving to a pre-payment endpoint.
func ExtractGoal(f Features, j *journey.Journey, vertical string) string {
	if last := j.Last(); last != nil {
		if g, ok := goalByLabel[strings.ToLower(last.ConversionGoal())]; ok {
			return g
		}
	}

	if vertical == "ecommerce" {
		switch {
		case f.AnyCue("checkout"):
			return "reach the checkout page"
		case f.AnyCue("add to cart", "add to bag", "add to basket"):
			return "add product to cart"
		}
	}

	if g, ok := goalByVertical[vertical]; ok {
		return g
	}
	return FallbackGoal
}

// intentByVertical is the generic intent phrase per vertical.
var intentByVertical = map[string]string{
	"ecommerce":       "find and configure a product to buy",
	"saas":            "evaluate and sign up for a service",
	"booking":         "find and reserve an available slot",
	"lead-generation": "get in touch with the provider",
	"research":        "research and compare options",
	"financial":       "explore a financial product",
	"education":       "explore a course or program",
	"healthcare":      "arrange care or an appointment",
	"real-estate":     "explore property listings",
	"entertainment":   "find something to watch or attend",
	"local-business":  "learn about a local business",
}

// Form-state keys that carry what the user was looking for.
var intentFormKeys = []string{"q", "query", "search", "search_query", "keyword", "category"}

// ExtractIntent prefers the session task description, then a search query
// or product category from any event's form state, then the vertical's
// generic phrase.
func ExtractIntent(f Features, j *journey.Journey, sess *session.Session, vertical string) string {
	if sess != nil && strings.TrimSpace(sess.Task) != "" {
		return strings.TrimSpace(sess.Task)
	}

	for i := range j.Events {
		ev := &j.Events[i]
		if ev.State == nil {
			continue
		}
		for _, key := range intentFormKeys {
			if v := strings.TrimSpace(ev.State.FormState[key]); v != "" {
				return "find: " + v
			}
		}
	}
	for i := range j.Events {
		if b := j.Events[i].Business; b != nil && b.Category != "" {
			return "browse " + strings.ToLower(b.Category)
		}
	}

	if intent, ok := intentByVertical[vertical]; ok {
		return intent
	}
	return FallbackIntent
}
