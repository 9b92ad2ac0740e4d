package prodstate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mkurahn/wayfind/session"
)

// Detection is a candidate variant selection pulled out of one event.
type Detection struct {
	Kind       SelectionKind `json:"kind"`
	Value      string        `json:"value"`
	Confidence float64       `json:"confidence"`
}

// Signal strengths. A detection combines a semantic-attribute signal (the
// element is labelled as a size/color control) with a value signal (the
// chosen value looks like a size/color). Either alone is below the size
// threshold; together they clear it.
const (
	attrSignal      = 0.6
	valueSignal     = 0.4
	weakValueSignal = 0.3
	valueOnlyConf   = 0.5
)

// PatternMatcher detects size/color/style selections with a confidence per
// detection. It is stateless and swappable; the Store only consumes
// Detections, so site-specific matchers can replace this one.
type PatternMatcher struct{}

// NewPatternMatcher returns the default matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{}
}

// Detect returns all selections the event plausibly represents. Only CLICK,
// INPUT, and FORM_SUBMIT events can select a variant.
func (m *PatternMatcher) Detect(ev *session.InteractionEvent) []Detection {
	switch ev.Type {
	case session.EventClick, session.EventInput, session.EventFormSubmit:
	default:
		return nil
	}

	var out []Detection
	if d, ok := m.detectKind(ev, KindSize, sizeAttrWords, isSizeValue); ok {
		out = append(out, d)
	}
	if d, ok := m.detectKind(ev, KindColor, colorAttrWords, isColorValue); ok {
		out = append(out, d)
	}
	if d, ok := m.detectKind(ev, KindStyle, styleAttrWords, isStyleValue); ok {
		out = append(out, d)
	}
	return out
}

func (m *PatternMatcher) detectKind(ev *session.InteractionEvent, kind SelectionKind, attrWords []string, isValue func(string) float64) (Detection, bool) {
	attrHit, attrValue := semanticAttrMatch(ev.Element, attrWords)

	// Candidate values, best source first.
	candidates := []string{ev.Element.Value, ev.Element.Text, attrValue}
	if ev.State != nil {
		for _, w := range attrWords {
			if v, ok := ev.State.FormState[w]; ok {
				candidates = append(candidates, v)
			}
		}
	}

	var best Detection
	for _, raw := range candidates {
		v := normalizeValue(raw)
		if v == "" {
			continue
		}
		strength := isValue(v)
		if strength == 0 {
			continue
		}
		conf := valueOnlyConf * strength / valueSignal // value-only baseline
		if attrHit {
			conf = attrSignal + strength
		}
		if conf > 1 {
			conf = 1
		}
		if conf > best.Confidence {
			best = Detection{Kind: kind, Value: v, Confidence: conf}
		}
	}

	return best, best.Confidence > 0
}

// semanticAttrMatch reports whether any identifying attribute of the element
// contains one of the kind words, and extracts a trailing value from
// id-style tokens like "size-M" or "color-blue".
func semanticAttrMatch(el session.Element, words []string) (bool, string) {
	fields := []string{
		el.Attr("name"), el.Attr("id"), el.Attr("aria-label"),
		el.Attr("data-option"), el.Attr("data-attribute"), el.Attr("class"),
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		lower := strings.ToLower(f)
		for _, w := range words {
			idx := strings.Index(lower, w)
			if idx < 0 {
				continue
			}
			// "size-M", "color_blue", "size:42": value rides after the word.
			rest := strings.TrimLeft(f[idx+len(w):], "-_:= ")
			return true, rest
		}
	}
	return false, ""
}

var (
	sizeAttrWords  = []string{"size"}
	colorAttrWords = []string{"colour", "color"}
	styleAttrWords = []string{"style", "variant", "fit"}
)

var letterSizes = map[string]bool{
	"xxs": true, "xs": true, "s": true, "m": true, "l": true,
	"xl": true, "xxl": true, "xxxl": true, "2xl": true, "3xl": true,
	"small": true, "medium": true, "large": true,
	"one size": true, "onesize": true,
}

// isSizeValue returns the value-signal strength for a size-looking value.
func isSizeValue(v string) float64 {
	lower := strings.ToLower(v)
	if letterSizes[lower] {
		return valueSignal
	}
	// Numeric sizes: EU 32-48, US 4-16, shoe sizes with halves.
	if n, err := strconv.ParseFloat(lower, 64); err == nil {
		if n >= 4 && n <= 52 {
			return weakValueSignal
		}
		return 0
	}
	// "UK 10", "EU 38"
	if m := regionSizePattern.FindStringSubmatch(lower); m != nil {
		return weakValueSignal
	}
	return 0
}

var regionSizePattern = regexp.MustCompile(`^(uk|eu|us|it|fr)\s?\d{1,2}(\.5)?$`)

var colorNames = map[string]bool{
	"black": true, "white": true, "red": true, "blue": true, "green": true,
	"yellow": true, "orange": true, "purple": true, "pink": true,
	"grey": true, "gray": true, "brown": true, "beige": true, "navy": true,
	"teal": true, "maroon": true, "olive": true, "khaki": true,
	"burgundy": true, "cream": true, "ivory": true, "gold": true,
	"silver": true, "charcoal": true, "tan": true, "coral": true,
}

var hexColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// isColorValue returns the value-signal strength for a color-looking value.
func isColorValue(v string) float64 {
	lower := strings.ToLower(v)
	if colorNames[lower] {
		return valueSignal
	}
	// "dark blue", "light grey": last word is the hue.
	if fields := strings.Fields(lower); len(fields) == 2 && colorNames[fields[1]] {
		return valueSignal
	}
	if hexColorPattern.MatchString(lower) {
		return weakValueSignal
	}
	return 0
}

var styleWords = map[string]bool{
	"slim": true, "regular": true, "relaxed": true, "loose": true,
	"skinny": true, "straight": true, "tapered": true, "oversized": true,
	"classic": true, "modern": true, "cropped": true,
}

// isStyleValue returns the value-signal strength for a style/fit value.
func isStyleValue(v string) float64 {
	lower := strings.ToLower(v)
	if styleWords[lower] {
		return valueSignal
	}
	if fields := strings.Fields(lower); len(fields) == 2 && styleWords[fields[0]] {
		return valueSignal
	}
	return 0
}

// normalizeValue trims decoration the capture agent leaves on values.
func normalizeValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "\"'()[]")
	if len(v) > 40 {
		return "" // free text, not a variant value
	}
	return v
}
