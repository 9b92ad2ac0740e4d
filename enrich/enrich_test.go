package enrich

import (
	"strings"
	"testing"

	"github.com/mkurahn/wayfind/prodstate"
	"github.com/mkurahn/wayfind/session"
)

func testEvent() *session.InteractionEvent {
	return &session.InteractionEvent{
		ID:        "ev-1",
		Timestamp: 1700000000000,
		Type:      session.EventClick,
		Element: session.Element{
			Tag:  "button",
			Text: "Add to Cart",
			Attributes: map[string]string{
				"id":    "add-to-cart",
				"class": "btn btn-primary",
			},
			Box: session.BoundingBox{X: 100, Y: 200, Width: 120, Height: 40},
			Nearby: []session.NearbyElement{
				{Tag: "span", Text: "$49.99", Distance: 12, Direction: "above"},
				{Tag: "button", Text: "Wishlist", Distance: 30, Direction: "right"},
			},
		},
		Page: session.PageContext{
			URL:      "https://shop.example/products/p-100",
			Title:    "Trail Shoe",
			PageType: "product",
		},
	}
}

func TestExtractSparseEventDefaults(t *testing.T) {
	x := New(Config{})
	ev := &session.InteractionEvent{Type: session.EventClick, Element: session.Element{Tag: "a"}}
	c := x.Extract(ev, nil)

	if !strings.Contains(c.Page, "URL: unknown") {
		t.Errorf("page context missing default URL:\n%s", c.Page)
	}
	if !strings.Contains(c.Page, "Page Type: unknown") {
		t.Errorf("page context missing default page type:\n%s", c.Page)
	}
	for name, got := range map[string]string{
		"spatial":       c.Spatial,
		"business":      c.Business,
		"visual":        c.Visual,
		"accessibility": c.Accessibility,
		"state":         c.State,
		"form":          c.Form,
		"errors":        c.Errors,
		"analytics":     c.Analytics,
		"seo":           c.SEO,
		"user":          c.User,
	} {
		if got != "" {
			t.Errorf("%s context should be empty for sparse event, got %q", name, got)
		}
	}
}

func TestExtractElementAndSpatial(t *testing.T) {
	x := New(Config{})
	c := x.Extract(testEvent(), nil)

	if !strings.Contains(c.Element, "Tag: button") {
		t.Errorf("element context missing tag:\n%s", c.Element)
	}
	if !strings.Contains(c.Element, `"Add to Cart"`) {
		t.Errorf("element context missing text:\n%s", c.Element)
	}
	if !strings.Contains(c.Element, "Position: (160, 220)") {
		t.Errorf("element context missing center position:\n%s", c.Element)
	}
	if !strings.Contains(c.Spatial, "$49.99") || !strings.Contains(c.Spatial, "12px above") {
		t.Errorf("spatial context wrong:\n%s", c.Spatial)
	}
	if c.NearbyCount != 2 {
		t.Errorf("NearbyCount = %d, want 2", c.NearbyCount)
	}
}

func TestExtractBusinessFromStore(t *testing.T) {
	x := New(Config{})
	store := prodstate.NewStore(prodstate.Config{})
	ev := testEvent()
	ev.Business = &session.BusinessContext{ProductID: "p-100", ProductName: "Trail Shoe"}
	store.ProcessInteraction(ev)

	c := x.Extract(ev, store)
	if !strings.Contains(c.Business, "Cart Ready: No") {
		t.Errorf("business context missing cart readiness:\n%s", c.Business)
	}
}

func TestExtractStateIncludesProductConfiguration(t *testing.T) {
	x := New(Config{})
	store := prodstate.NewStore(prodstate.Config{})
	ev := testEvent()
	ev.Business = &session.BusinessContext{ProductID: "p-100", ProductName: "Trail Shoe"}
	store.ProcessInteraction(ev)

	c := x.Extract(ev, store)
	if !strings.Contains(c.State, "Product Configuration:") {
		t.Fatalf("state context missing product configuration:\n%s", c.State)
	}
	if !strings.Contains(c.State, "Trail Shoe") || !strings.Contains(c.State, "Cart Ready:") {
		t.Errorf("product configuration incomplete:\n%s", c.State)
	}

	// Without a store the state block only carries captured DOM deltas.
	plain := x.Extract(ev, nil)
	if strings.Contains(plain.State, "Product Configuration:") {
		t.Errorf("state context has product configuration without a store:\n%s", plain.State)
	}
}

func TestExtractRawBusinessWithoutStore(t *testing.T) {
	x := New(Config{})
	ev := testEvent()
	ev.Business = &session.BusinessContext{ProductName: "Trail Shoe", Price: "$49.99"}
	c := x.Extract(ev, nil)
	if !strings.Contains(c.Business, "Product: Trail Shoe") || !strings.Contains(c.Business, "Price: $49.99") {
		t.Errorf("raw business context wrong:\n%s", c.Business)
	}
}

func TestHierarchyFragmentMarkdown(t *testing.T) {
	x := New(Config{})
	ev := testEvent()
	ev.Page.Ancestors = []string{"html", "body", "main", "div", "button"}
	ev.Element.HTML = `<button id="add-to-cart"><strong>Add to Cart</strong></button>`
	c := x.Extract(ev, nil)

	if !strings.Contains(c.Hierarchy, "html > body > main > div > button") {
		t.Errorf("hierarchy missing ancestor path:\n%s", c.Hierarchy)
	}
	if !strings.Contains(c.Hierarchy, "Add to Cart") {
		t.Errorf("hierarchy missing fragment text:\n%s", c.Hierarchy)
	}
	if strings.Contains(c.Hierarchy, "<strong>") {
		t.Errorf("hierarchy leaked raw HTML:\n%s", c.Hierarchy)
	}
}

func TestHierarchyFragmentTruncated(t *testing.T) {
	x := New(Config{MaxFragmentLen: 10})
	got := x.markdownFragment("<p>"+strings.Repeat("a", 50)+"</p>", "")
	if len([]rune(got)) > 11 {
		t.Errorf("fragment not truncated: %q", got)
	}
}

func TestDesignSystemDetection(t *testing.T) {
	ev := testEvent()
	got := designSystemContext(ev)
	if !strings.Contains(got, "Bootstrap") {
		t.Errorf("designSystemContext = %q, want Bootstrap", got)
	}

	ev.Element.Attributes["class"] = "layout-grid item"
	if got := designSystemContext(ev); got != "" {
		t.Errorf("designSystemContext = %q for plain classes, want empty", got)
	}
}

func TestBehaviorContext(t *testing.T) {
	ev := testEvent()
	ev.Type = session.EventInput
	ev.Element.Value = "running shoes"
	got := behaviorContext(ev)
	if !strings.Contains(got, "Action: type") || !strings.Contains(got, `"running shoes"`) {
		t.Errorf("behaviorContext = %q", got)
	}
}

func TestTechnicalContexts(t *testing.T) {
	ev := testEvent()
	ev.Technical = &session.TechnicalContext{
		LoadTimeMs:   840,
		RequestCount: 31,
		NetworkState: "idle",
		Errors:       []string{"net::ERR_ABORTED image.png"},
		Analytics:    map[string]string{"ga_event": "add_to_cart"},
		SEO:          map[string]string{"og:type": "product"},
	}
	x := New(Config{})
	c := x.Extract(ev, nil)

	if !strings.Contains(c.Performance, "840ms") || !strings.Contains(c.Performance, "Requests: 31") {
		t.Errorf("performance context wrong:\n%s", c.Performance)
	}
	if c.Network != "Network State: idle" {
		t.Errorf("network context = %q", c.Network)
	}
	if !strings.Contains(c.Errors, "ERR_ABORTED") {
		t.Errorf("error context wrong:\n%s", c.Errors)
	}
	if !strings.Contains(c.Analytics, "ga_event: add_to_cart") {
		t.Errorf("analytics context wrong:\n%s", c.Analytics)
	}
	if !strings.Contains(c.SEO, "og:type: product") {
		t.Errorf("seo context wrong:\n%s", c.SEO)
	}
}
