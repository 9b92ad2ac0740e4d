package selector

import (
	"regexp"
	"strings"
)

// Class names that encode transient UI state rather than element identity.
var stateClasses = map[string]bool{
	"active": true, "selected": true, "open": true, "closed": true,
	"hover": true, "focus": true, "focused": true, "disabled": true,
	"enabled": true, "hidden": true, "visible": true, "expanded": true,
	"collapsed": true, "loading": true, "error": true, "invalid": true,
	"checked": true, "current": true, "highlight": true, "dragging": true,
}

// Blocklist for generated class names. Hash-like suffixes, CSS-in-JS
// prefixes, and CSS-module output all change between builds and must not
// anchor a selector.
var unstableClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^css-[a-z0-9]+$`),         // emotion
	regexp.MustCompile(`^sc-[a-zA-Z0-9]+$`),       // styled-components
	regexp.MustCompile(`^jsx-[0-9]+$`),            // styled-jsx
	regexp.MustCompile(`^svelte-[a-z0-9]+$`),      // svelte scoping
	regexp.MustCompile(`^_{1,2}[a-zA-Z0-9_]+_[a-zA-Z0-9]{5,}$`), // CSS modules
	regexp.MustCompile(`--[a-z0-9]{5,}$`),         // BEM-ish hashed modifier
	regexp.MustCompile(`^[a-zA-Z]{1,3}[0-9]{4,}$`),
	regexp.MustCompile(`^[a-f0-9]{8,}$`),          // bare hex hash
}

// IsStableToken reports whether a class name or id looks stable enough to
// anchor a selector across page loads.
func IsStableToken(token string) bool {
	if token == "" {
		return false
	}
	lower := strings.ToLower(token)
	if stateClasses[lower] {
		return false
	}
	for _, p := range unstableClassPatterns {
		if p.MatchString(token) {
			return false
		}
	}
	if looksHashLike(lower) {
		return false
	}
	return true
}

// firstStableClass returns the first stable class from a space-separated
// class attribute, or "".
func firstStableClass(classAttr string) string {
	for _, c := range strings.Fields(classAttr) {
		if IsStableToken(c) {
			return c
		}
	}
	return ""
}

// looksHashLike mimics hashLikeToken without lookahead (RE2 has none):
// 8+ chars of [a-z0-9] containing at least one digit and one letter.
func looksHashLike(token string) bool {
	if len(token) < 8 {
		return false
	}
	hasDigit, hasLetter := false, false
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLetter = true
		default:
			return false
		}
	}
	return hasDigit && hasLetter
}
