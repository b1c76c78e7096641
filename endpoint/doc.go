// Package endpoint registers HTTP handlers together with their declared
// input and output models.
//
// Registering a handler through a Registry does three things at once: it
// adds an operation to the OpenAPI document held by the registry's
// openapi.Builder, it records a Route for later mounting, and it returns a
// wrapped http.Handler. The wrapper binds the declared inputs from each
// request, calls the handler with a *Call and renders its result.
//
//	reg := endpoint.NewRegistry()
//	h, err := reg.Parameter(endpoint.ParameterSpec{
//		Method:     http.MethodGet,
//		URL:        "/items/{id}",
//		Parameters: []openapi.Parameter{{Model: ItemPath{}, Location: openapi.LocationPath}},
//		Response:   openapi.Response{Model: Item{}},
//		Tags:       []string{"items"},
//		Doc:        "Fetch one item",
//	}, getItem)
//
// Handlers written as methods on a view type can be registered with
// ParameterMethod and BodyMethod; a fresh view value is created for every
// request and all of the view's methods are served by one handler per URL
// once the registry is materialized.
package endpoint
