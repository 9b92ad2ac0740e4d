// Package kit holds the small endpoint plumbing shared by the HTTP and MCP
// transports: the Endpoint function type, middleware chaining, and request
// metadata carried through context.
package kit

import "context"

// Endpoint is one logical operation, transport-agnostic. Both the HTTP
// handlers and the MCP tools decode into a typed request and call one of
// these.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
