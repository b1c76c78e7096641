package endpoint

import (
	"context"
	"net/http"
)

// HandlerFunc handles one bound request. The returned value is rendered by
// the wrapper; returning nil means the handler wrote the response itself.
type HandlerFunc func(*Call) (any, error)

// Call carries the request and the inputs constructed for it, in
// declaration order.
type Call struct {
	Writer  http.ResponseWriter
	Request *http.Request
	Args    []any
}

// Context returns the request context.
func (c *Call) Context() context.Context {
	return c.Request.Context()
}

// Arg returns the first constructed input of type T.
func Arg[T any](c *Call) (T, bool) {
	for _, arg := range c.Args {
		if v, ok := arg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
