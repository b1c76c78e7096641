package endpoint

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/weavekit/binding"
	"github.com/drblury/weavekit/openapi"
)

// ParameterSpec declares an endpoint whose inputs come from the query
// string, path wildcards or headers.
type ParameterSpec struct {
	Method     string
	URL        string
	Parameters []openapi.Parameter
	Response   openapi.Response
	Tags       []string
	// Doc is the handler documentation: its first line becomes the
	// operation summary, the lines between the first and the last the
	// description.
	Doc string
}

// BodySpec declares an endpoint whose input is a JSON request body.
type BodySpec struct {
	Method   string
	URL      string
	Body     openapi.Body
	Response openapi.Response
	Tags     []string
	Doc      string
}

type operation struct {
	method   string
	url      string
	tags     []string
	doc      string
	response openapi.Response
	params   openapi3.Parameters
	body     *openapi3.RequestBody
	binders  []*binding.Binder
}

// Parameter registers h for spec and returns the wrapped handler.
func (r *Registry) Parameter(spec ParameterSpec, h HandlerFunc) (http.Handler, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	return r.parameter(spec, funcIdentity(h), h)
}

// Body registers h for spec and returns the wrapped handler.
func (r *Registry) Body(spec BodySpec, h HandlerFunc) (http.Handler, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	return r.body(spec, funcIdentity(h), h)
}

// ParameterMethod registers a method of view type V. A new *V is created
// for every request.
func ParameterMethod[V any](r *Registry, spec ParameterSpec, m func(*V, *Call) (any, error)) (http.Handler, error) {
	if m == nil {
		return nil, ErrNilHandler
	}
	return r.parameter(spec, viewIdentity[V](), viewHandler(m))
}

// BodyMethod is the request body counterpart of ParameterMethod.
func BodyMethod[V any](r *Registry, spec BodySpec, m func(*V, *Call) (any, error)) (http.Handler, error) {
	if m == nil {
		return nil, ErrNilHandler
	}
	return r.body(spec, viewIdentity[V](), viewHandler(m))
}

func viewHandler[V any](m func(*V, *Call) (any, error)) HandlerFunc {
	return func(c *Call) (any, error) {
		return m(new(V), c)
	}
}

func viewIdentity[V any]() identity {
	t := reflect.TypeFor[V]()
	return identity{module: t.PkgPath(), view: t.Name(), classBased: true}
}

func (r *Registry) parameter(spec ParameterSpec, id identity, h HandlerFunc) (http.Handler, error) {
	method, err := checkRoute(spec.Method, spec.URL)
	if err != nil {
		return nil, err
	}

	binders := make([]*binding.Binder, 0, len(spec.Parameters))
	for _, param := range spec.Parameters {
		b, err := binding.New(param.Model, param.In())
		if err != nil {
			return nil, fmt.Errorf("register %s %s: %w", spec.Method, spec.URL, err)
		}
		binders = append(binders, b)
	}

	params, err := r.builder.ToParameters(spec.Parameters)
	if err != nil {
		return nil, fmt.Errorf("register %s %s: %w", spec.Method, spec.URL, err)
	}

	return r.register(operation{
		method:   method,
		url:      spec.URL,
		tags:     spec.Tags,
		doc:      spec.Doc,
		response: spec.Response,
		params:   params,
		binders:  binders,
	}, id, h)
}

func (r *Registry) body(spec BodySpec, id identity, h HandlerFunc) (http.Handler, error) {
	method, err := checkRoute(spec.Method, spec.URL)
	if err != nil {
		return nil, err
	}

	b, err := binding.NewBody(spec.Body.Model)
	if err != nil {
		return nil, fmt.Errorf("register %s %s: %w", spec.Method, spec.URL, err)
	}
	body, err := r.builder.ToRequestBody(spec.Body)
	if err != nil {
		return nil, fmt.Errorf("register %s %s: %w", spec.Method, spec.URL, err)
	}

	return r.register(operation{
		method:   method,
		url:      spec.URL,
		tags:     spec.Tags,
		doc:      spec.Doc,
		response: spec.Response,
		body:     body,
		binders:  []*binding.Binder{b},
	}, id, h)
}

func (r *Registry) register(op operation, id identity, h HandlerFunc) (http.Handler, error) {
	method := op.method
	responses, err := r.builder.ToResponse(op.response)
	if err != nil {
		return nil, fmt.Errorf("register %s %s: %w", method, op.url, err)
	}

	summary, description := splitDoc(op.doc)
	err = r.builder.AddEndpoint(openapi.Endpoint{
		Method:      method,
		Path:        op.url,
		Tags:        op.tags,
		Summary:     summary,
		Description: description,
		Parameters:  op.params,
		RequestBody: op.body,
		Responses:   responses,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s %s: %w", method, op.url, err)
	}

	bound := newBoundHandler(r, op.binders, op.response, h)
	r.record(Route{
		URL:        op.url,
		Method:     method,
		Module:     id.module,
		View:       id.view,
		ClassBased: id.classBased,
	}, bound)

	r.logger.Debug("endpoint registered", "method", method, "url", op.url, "module", id.module, "view", id.view)
	return bound, nil
}

// checkRoute validates the URL and returns the normalized method.
func checkRoute(method, url string) (string, error) {
	if !strings.HasPrefix(url, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	return openapi.NormalizeMethod(method)
}
