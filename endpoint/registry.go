package endpoint

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/responder"
)

// Option configures a Registry via the functional options pattern.
type Option func(*Registry)

// Registry records endpoint registrations. It owns the document builder
// and the handler table used to materialize routes.
type Registry struct {
	mu        sync.Mutex
	builder   *openapi.Builder
	responder *responder.Responder
	logger    *slog.Logger
	routes    []Route
	handlers  map[handlerKey]http.Handler
}

type handlerKey struct {
	module string
	view   string
	method string
	url    string
}

// NewRegistry returns an empty registry. Without WithBuilder a fresh
// openapi.Builder is created; without WithResponder errors are rendered by
// a default responder sharing the registry logger.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:   slog.Default(),
		handlers: make(map[handlerKey]http.Handler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.builder == nil {
		r.builder = openapi.NewBuilder(openapi.WithLogger(r.logger))
	}
	if r.responder == nil {
		r.responder = responder.NewResponder(responder.WithLogger(r.logger))
	}
	return r
}

// WithBuilder makes the registry contribute to an existing document.
func WithBuilder(b *openapi.Builder) Option {
	return func(r *Registry) {
		r.builder = b
	}
}

// WithResponder sets the responder used to render results and errors.
func WithResponder(resp *responder.Responder) Option {
	return func(r *Registry) {
		r.responder = resp
	}
}

// WithLogger injects a custom slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Builder returns the document builder the registry writes to.
func (r *Registry) Builder() *openapi.Builder {
	return r.builder
}

// Routes returns the recorded routes in registration order.
func (r *Registry) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.routes)
}

// Resolve implements Resolver using the registry's own handler table.
func (r *Registry) Resolve(route Route) (http.Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[handlerKey{module: route.Module, view: route.View, method: route.Method, url: route.URL}]
	return h, ok
}

func (r *Registry) record(route Route, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.handlers[handlerKey{module: route.Module, view: route.View, method: route.Method, url: route.URL}] = h
}
