package selector

import (
	"context"
	"testing"

	"github.com/mkurahn/wayfind/session"
)

func TestReliabilityForCount(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{1, 1.0},
		{0, 0.0},
		{-1, 0.0},
		{2, 0.8},
		{3, 0.8},
		{4, 0.6},
		{10, 0.6},
		{11, 0.3},
		{15, 0.3},
		{500, 0.3},
	}
	for _, tt := range tests {
		if got := ReliabilityForCount(tt.count); got != tt.want {
			t.Fatalf("count %d: got %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestIsStableToken(t *testing.T) {
	stable := []string{"add-to-cart", "product-title", "nav", "btn-primary", "checkout"}
	for _, tok := range stable {
		if !IsStableToken(tok) {
			t.Fatalf("%q should be stable", tok)
		}
	}

	unstable := []string{
		"",
		"active", "selected", "Loading", "hidden",
		"css-1q2w3e", "sc-bdVaJa", "jsx-392817", "svelte-1xk2a9",
		"__title_x8f2kq",
		"a1b2c3d4e5",  // hash-like
		"deadbeef99",  // hex hash
	}
	for _, tok := range unstable {
		if IsStableToken(tok) {
			t.Fatalf("%q should be unstable", tok)
		}
	}
}

func TestFirstStableClass(t *testing.T) {
	if got := firstStableClass("css-1q2w3e add-to-cart active"); got != "add-to-cart" {
		t.Fatalf("got %q, want add-to-cart", got)
	}
	if got := firstStableClass("css-1q2w3e active"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestSnapshotCounter(t *testing.T) {
	page := `<html><body>
		<button id="add-to-cart" class="btn primary">Add to Cart</button>
		<div class="item"><a href="/a">one</a></div>
		<div class="item"><a href="/b">two</a></div>
		<input type="text" name="q">
	</body></html>`

	c, err := NewSnapshotCounter(page)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		sel  string
		want int
	}{
		{"#add-to-cart", 1},
		{"button", 1},
		{"div.item", 2},
		{"div.item a", 2},
		{"input[name=q]", 1},
		{`input[name="q"]`, 1},
		{"input[name]", 1},
		{"#missing", 0},
		{"/html/body/button", 0},          // xpath: opaque fallback
		{"body > div:nth-child(2)", 0},    // structural path: opaque fallback
	}
	for _, tt := range tests {
		got, err := c.Count(context.Background(), tt.sel)
		if err != nil {
			t.Fatalf("%s: %v", tt.sel, err)
		}
		if got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.sel, got, tt.want)
		}
	}
}

func TestResolve_PreferenceOrder(t *testing.T) {
	page := `<html><body>
		<button id="buy" data-testid="buy-button" aria-label="Buy now" class="btn">Buy</button>
		<button class="btn">Other</button>
	</body></html>`
	counter, err := NewSnapshotCounter(page)
	if err != nil {
		t.Fatal(err)
	}

	r := New(Config{})
	res := r.Resolve(context.Background(), Input{
		Element: session.Element{
			Tag:  "button",
			Text: "Buy",
			Attributes: map[string]string{
				"id":          "buy",
				"data-testid": "buy-button",
				"aria-label":  "Buy now",
				"class":       "btn",
			},
		},
		Counter: counter,
	})

	if res.Best != "#buy" {
		t.Fatalf("best: got %q, want #buy", res.Best)
	}
	if res.Reliability != 1.0 {
		t.Fatalf("reliability: got %v, want 1.0", res.Reliability)
	}
	if res.Trivial {
		t.Fatal("id selector must not be trivial")
	}
	if len(res.Backups) == 0 {
		t.Fatal("expected backup selectors")
	}
	// Test attribute outranks aria-label in the backups.
	if res.Backups[0] != `[data-testid="buy-button"]` {
		t.Fatalf("first backup: got %q", res.Backups[0])
	}
}

func TestResolve_SkipsZeroMatchCandidates(t *testing.T) {
	// The id does not exist on the page (stale capture); the resolver must
	// fall through to a candidate that matches.
	page := `<html><body><button class="add-to-cart">Add</button></body></html>`
	counter, err := NewSnapshotCounter(page)
	if err != nil {
		t.Fatal(err)
	}

	r := New(Config{})
	res := r.Resolve(context.Background(), Input{
		Element: session.Element{
			Tag:        "button",
			Attributes: map[string]string{"id": "gone", "class": "add-to-cart"},
		},
		Counter: counter,
	})

	if res.Best != "button.add-to-cart" {
		t.Fatalf("best: got %q, want button.add-to-cart", res.Best)
	}
}

func TestResolve_AmbiguousOnlyCandidates(t *testing.T) {
	// All candidates match 15 elements: reliability must land on 0.3 and
	// the resolution must be trivial (bare tag).
	var b []byte
	b = append(b, "<html><body>"...)
	for i := 0; i < 15; i++ {
		b = append(b, `<li class="css-9x82k1">item</li>`...)
	}
	b = append(b, "</body></html>"...)
	counter, err := NewSnapshotCounter(string(b))
	if err != nil {
		t.Fatal(err)
	}

	r := New(Config{})
	res := r.Resolve(context.Background(), Input{
		Element: session.Element{Tag: "li", Attributes: map[string]string{"class": "css-9x82k1"}},
		Counter: counter,
	})

	if res.Best != "li" {
		t.Fatalf("best: got %q, want li", res.Best)
	}
	if res.Reliability != 0.3 {
		t.Fatalf("reliability: got %v, want 0.3", res.Reliability)
	}
	if !res.Trivial {
		t.Fatal("bare tag resolution must be trivial")
	}
}

func TestResolve_UsesCaptureAgentCounts(t *testing.T) {
	r := New(Config{})
	res := r.Resolve(context.Background(), Input{
		Element: session.Element{Tag: "button"},
		Set: &session.SelectorSet{
			Primary:     "#checkout",
			MatchCounts: map[string]int{"#checkout": 1, "button": 12},
		},
	})
	if res.Best != "#checkout" {
		t.Fatalf("best: got %q", res.Best)
	}
	if res.Reliability != 1.0 {
		t.Fatalf("reliability: got %v", res.Reliability)
	}
}

func TestResolve_NoCandidates(t *testing.T) {
	r := New(Config{})
	res := r.Resolve(context.Background(), Input{})
	if res.Best != "" || res.Reliability != 0 {
		t.Fatalf("empty input should yield zero resolution, got %+v", res)
	}
}
