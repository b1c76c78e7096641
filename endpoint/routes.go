package endpoint

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Route records where a registered handler should be mounted.
type Route struct {
	URL    string
	Method string
	// Module is the package path of the handler.
	Module string
	// View is the function name, or the receiver type name for
	// class-based handlers.
	View       string
	ClassBased bool
}

// Entry is one materialized mux binding.
type Entry struct {
	Pattern string
	Route   Route
	Handler http.Handler
}

// Resolver finds the handler registered for a route.
type Resolver interface {
	Resolve(Route) (http.Handler, bool)
}

// ViewAdapter combines the handlers registered for one class-based view
// into a single handler. Keys are "METHOD /url".
type ViewAdapter func(view string, handlers map[string]http.Handler) http.Handler

// MaterializeOption configures Materialize.
type MaterializeOption func(*materializeOptions)

type materializeOptions struct {
	resolver Resolver
	adapter  ViewAdapter
}

// WithResolver replaces the registry's own handler table.
func WithResolver(res Resolver) MaterializeOption {
	return func(o *materializeOptions) {
		if res != nil {
			o.resolver = res
		}
	}
}

// WithViewAdapter replaces AdaptView.
func WithViewAdapter(adapter ViewAdapter) MaterializeOption {
	return func(o *materializeOptions) {
		if adapter != nil {
			o.adapter = adapter
		}
	}
}

// Materialize turns the recorded routes into mux entries. Function routes
// are bound as "METHOD /url". Each class-based view is adapted once and
// the adapted handler is bound to every URL the view was registered on.
func (r *Registry) Materialize(opts ...MaterializeOption) ([]Entry, error) {
	cfg := materializeOptions{resolver: r, adapter: AdaptView}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	routes := r.Routes()
	resolved := make([]http.Handler, len(routes))
	views := make(map[string]map[string]http.Handler)
	for i, route := range routes {
		h, ok := cfg.resolver.Resolve(route)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s (%s.%s)", ErrUnresolvedRoute, route.Method, route.URL, route.Module, route.View)
		}
		resolved[i] = h
		if route.ClassBased {
			key := viewKey(route)
			if views[key] == nil {
				views[key] = make(map[string]http.Handler)
			}
			views[key][route.Method+" "+route.URL] = h
		}
	}

	var entries []Entry
	adapted := make(map[string]http.Handler)
	owners := make(map[string]string)
	for i, route := range routes {
		pattern, owner := route.Method+" "+route.URL, viewKey(route)+" "+route.Method
		handler := resolved[i]

		if route.ClassBased {
			pattern, owner = route.URL, viewKey(route)
			if owners[pattern] == owner {
				continue
			}
			if _, ok := adapted[owner]; !ok {
				adapted[owner] = cfg.adapter(route.View, views[owner])
			}
			handler = adapted[owner]
		}

		if prev, dup := owners[pattern]; dup {
			return nil, fmt.Errorf("%w: %q registered by %s and %s", ErrDuplicateRoute, pattern, prev, owner)
		}
		owners[pattern] = owner
		entries = append(entries, Entry{Pattern: pattern, Route: route, Handler: handler})
	}

	r.logger.Info("routes materialized", "routes", len(routes), "entries", len(entries), "views", len(adapted))
	return entries, nil
}

// Mount materializes the registry and binds every entry on mux.
func (r *Registry) Mount(mux *http.ServeMux, opts ...MaterializeOption) error {
	entries, err := r.Materialize(opts...)
	if err != nil {
		return err
	}
	for _, e := range entries {
		mux.Handle(e.Pattern, e.Handler)
	}
	return nil
}

func viewKey(route Route) string {
	if route.Module == "" {
		return route.View
	}
	return route.Module + "." + route.View
}

// AdaptView dispatches on the request method. When a view serves the same
// method on several URLs the handler registered for the matched pattern
// wins. Unknown methods get 405 with an Allow header.
func AdaptView(_ string, handlers map[string]http.Handler) http.Handler {
	byMethod := make(map[string]http.Handler)
	keys := lo.Keys(handlers)
	slices.Sort(keys)
	for _, key := range keys {
		method, _, _ := strings.Cut(key, " ")
		if _, ok := byMethod[method]; !ok {
			byMethod[method] = handlers[key]
		}
	}
	allowed := lo.Keys(byMethod)
	slices.Sort(allowed)

	return &viewDispatcher{
		exact:    handlers,
		byMethod: byMethod,
		allow:    strings.Join(allowed, ", "),
	}
}

type viewDispatcher struct {
	exact    map[string]http.Handler
	byMethod map[string]http.Handler
	allow    string
}

func (d *viewDispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := d.exact[req.Method+" "+req.Pattern]; ok {
		h.ServeHTTP(w, req)
		return
	}
	if h, ok := d.byMethod[req.Method]; ok {
		h.ServeHTTP(w, req)
		return
	}
	w.Header().Set("Allow", d.allow)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
