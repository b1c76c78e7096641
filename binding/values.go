package binding

import (
	"net/http"
)

// QueryValues flattens the query string: a key given once maps to its
// string, a repeated key maps to all of its values.
func QueryValues(r *http.Request) map[string]any {
	raw := make(map[string]any)
	for key, values := range r.URL.Query() {
		switch len(values) {
		case 0:
		case 1:
			raw[key] = values[0]
		default:
			raw[key] = values
		}
	}
	return raw
}

// PathValues reads the named wildcards matched by the request pattern.
// Wildcards that did not match are left out.
func PathValues(r *http.Request, names []string) map[string]any {
	raw := make(map[string]any, len(names))
	for _, name := range names {
		if v := r.PathValue(name); v != "" {
			raw[name] = v
		}
	}
	return raw
}

// HeaderValues reads the named headers; lookup is case-insensitive.
func HeaderValues(h http.Header, names []string) map[string]any {
	raw := make(map[string]any, len(names))
	for _, name := range names {
		if v := h.Values(name); len(v) == 1 {
			raw[name] = v[0]
		} else if len(v) > 1 {
			raw[name] = v
		}
	}
	return raw
}
