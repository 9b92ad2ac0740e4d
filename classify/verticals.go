package classify

import "github.com/mkurahn/wayfind/journey"

// Fallback labels. Classification never produces an unrepresentable state.
const (
	FallbackType   = "general-task"
	FallbackGoal   = "complete-task"
	FallbackIntent = "complete-user-intent"
)

// VerticalRule is one (predicate, label) pair. Rules are evaluated in
// order; the first match wins.
type VerticalRule struct {
	Vertical string
	Match    func(Features) bool
}

// PatternRule refines a vertical into a specific journey-type label.
type PatternRule struct {
	Type  string
	Match func(Features, *journey.Journey) bool
}

// verticalRules is the ordered vertical table. E-commerce leads: it has the
// strongest cues and the richest sub-patterns.
var verticalRules = []VerticalRule{
	{"ecommerce", func(f Features) bool {
		return f.AnyPage("product", "category", "cart", "checkout") ||
			f.AnyGoal("cart", "checkout") ||
			f.AnyCue("add to cart", "add to bag", "/product", "/cart", "/checkout")
	}},
	{"saas", func(f Features) bool {
		return f.AnyGoal("subscription") ||
			f.AnyCue("pricing", "free trial", "subscribe", "/plans", "upgrade plan")
	}},
	{"booking", func(f Features) bool {
		return f.AnyGoal("booking") ||
			f.AnyCue("book now", "reservation", "check availability", "check-in", "checkin")
	}},
	{"lead-generation", func(f Features) bool {
		return f.AnyCue("request a demo", "contact sales", "get a quote", "request quote", "contact us")
	}},
	{"research", func(f Features) bool {
		return f.AnyCue("compare", "comparison", "vs.", "review", "benchmark")
	}},
	{"financial", func(f Features) bool {
		return f.AnyCue("loan", "mortgage", "insurance", "credit card", "interest rate", "apply now")
	}},
	{"education", func(f Features) bool {
		return f.AnyCue("course", "enroll", "curriculum", "lesson", "tuition")
	}},
	{"healthcare", func(f Features) bool {
		return f.AnyCue("appointment", "doctor", "clinic", "patient", "symptom")
	}},
	{"real-estate", func(f Features) bool {
		return f.AnyCue("listing", "property", "schedule a tour", "agent", "sqft", "floor plan")
	}},
	{"entertainment", func(f Features) bool {
		return f.AnyCue("watch", "episode", "stream", "playlist", "trailer", "tickets")
	}},
	{"local-business", func(f Features) bool {
		return f.AnyCue("directions", "opening hours", "menu", "call us", "near me")
	}},
}

// patternRules refines each vertical. Ordered; first match wins; a vertical
// without a match falls back to "<vertical>-general".
var patternRules = map[string][]PatternRule{
	"ecommerce": {
		{"ecommerce-research-validation-purchase", func(f Features, j *journey.Journey) bool {
			return len(j.DecisionPoints) > 0 &&
				(f.HasStage(journey.StageConversion) || f.AnyGoal("cart", "checkout"))
		}},
		{"ecommerce-high-intent-purchase", func(f Features, j *journey.Journey) bool {
			return f.HasStage(journey.StageConversion) || f.AnyGoal("cart", "checkout")
		}},
		{"ecommerce-product-configuration", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("size", "color", "variant", "quantity")
		}},
		{"ecommerce-category-browse", func(f Features, j *journey.Journey) bool {
			return f.AnyPage("category", "search") || f.AnyURL("/category", "/search", "/collections")
		}},
	},
	"saas": {
		{"saas-trial-signup", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("free trial", "sign up", "signup") || f.AnyGoal("signup")
		}},
		{"saas-plan-selection", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("pricing", "/plans", "upgrade") || f.AnyGoal("subscription")
		}},
	},
	"booking": {
		{"booking-date-selection", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("check availability", "select dates", "calendar")
		}},
		{"booking-reservation-flow", func(f Features, j *journey.Journey) bool {
			return f.AnyGoal("booking") || f.AnyCue("book now", "reserve")
		}},
	},
	"lead-generation": {
		{"lead-gen-demo-request", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("request a demo", "demo")
		}},
		{"lead-gen-contact-form", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("contact", "quote")
		}},
	},
	"research": {
		{"research-comparison", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("compare", "comparison", "vs.")
		}},
		{"research-review-reading", func(f Features, j *journey.Journey) bool {
			return f.AnyCue("review")
		}},
	},
}

// ClassifyType returns the journey-type label for a journey.
func ClassifyType(f Features, j *journey.Journey) (vertical, journeyType string) {
	for _, rule := range verticalRules {
		if rule.Match(f) {
			vertical = rule.Vertical
			break
		}
	}
	if vertical == "" {
		return "", FallbackType
	}

	for _, rule := range patternRules[vertical] {
		if rule.Match(f, j) {
			return vertical, rule.Type
		}
	}
	return vertical, vertical + "-general"
}
