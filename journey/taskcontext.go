package journey

import (
	"strings"

	"github.com/mkurahn/wayfind/session"
)

// Task contexts the scanner distinguishes. Ordered: more specific tokens
// first so "checkout" on a cart page wins over the generic cart context.
var taskContextRules = []struct {
	context string
	tokens  []string
}{
	{"checkout", []string{"checkout", "payment", "billing", "place order"}},
	{"add-to-cart", []string{"add to cart", "add to bag", "add to basket", "cart"}},
	{"signup", []string{"sign up", "signup", "register", "create account"}},
	{"login", []string{"log in", "login", "sign in"}},
	{"booking", []string{"book now", "booking", "reserve", "reservation"}},
	{"search", []string{"search"}},
}

// taskContext infers what the user is trying to do from one event's goal
// label, element text, page type, and URL. Empty when nothing matches.
func taskContext(ev *session.InteractionEvent) string {
	if goal := ev.ConversionGoal(); goal != "" {
		switch {
		case strings.Contains(goal, "cart"):
			return "add-to-cart"
		case strings.Contains(goal, "checkout"):
			return "checkout"
		case strings.Contains(goal, "signup"):
			return "signup"
		case strings.Contains(goal, "booking"):
			return "booking"
		case strings.Contains(goal, "subscription"):
			return "signup"
		}
	}

	haystack := strings.ToLower(ev.Element.Text + " " + ev.Page.PageType + " " + ev.Page.URL)
	for _, rule := range taskContextRules {
		for _, tok := range rule.tokens {
			if strings.Contains(haystack, tok) {
				return rule.context
			}
		}
	}
	return ""
}

// materialChange reports whether two task contexts are unrelated: different
// contexts that share no token. "add-to-cart" → "checkout" is material even
// though both belong to purchasing; the scanner treats them as separate
// attempts unless a goal label bridges them.
func materialChange(prev, next string) bool {
	if prev == next {
		return false
	}
	prevToks := strings.Split(prev, "-")
	nextToks := strings.Split(next, "-")
	for _, p := range prevToks {
		for _, n := range nextToks {
			if p == n {
				return false
			}
		}
	}
	return true
}
