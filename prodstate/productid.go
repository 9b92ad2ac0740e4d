package prodstate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mkurahn/wayfind/session"
)

// URL path patterns a product id can hide in, per the capture-agent
// convention: /product/<id>, /products/<id>, /p/<id>, /item/<id>, /dp/<id>.
var productPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/products?/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/p/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/item/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/dp/([A-Za-z0-9_-]+)`),
}

// Query parameters that carry a product id.
var productQueryKeys = []string{"pid", "product_id", "productId", "sku", "item_id"}

// Data attributes the capture agent records on product-scoped elements.
var productDataAttrs = []string{"data-product-id", "data-productid", "data-sku", "data-item-id"}

// ExtractProductID pulls a product identifier from an event, preferring the
// explicit business annotation, then element data attributes, then the page
// URL. Empty means the event is not product-scoped.
func ExtractProductID(ev *session.InteractionEvent) string {
	if ev.Business != nil && ev.Business.ProductID != "" {
		return ev.Business.ProductID
	}
	for _, attr := range productDataAttrs {
		if v := ev.Element.Attr(attr); v != "" {
			return v
		}
	}
	return productIDFromURL(ev.Page.URL)
}

func productIDFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	for _, p := range productPathPatterns {
		if m := p.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	}

	q := u.Query()
	for _, key := range productQueryKeys {
		if v := q.Get(key); v != "" {
			return v
		}
	}

	// Some sites put "product/<id>" after a hash route.
	if u.Fragment != "" {
		for _, p := range productPathPatterns {
			if m := p.FindStringSubmatch("/" + strings.TrimPrefix(u.Fragment, "/")); m != nil {
				return m[1]
			}
		}
	}

	return ""
}
