// Package weavekit binds typed request models to HTTP handlers and assembles
// the OpenAPI document describing them as the handlers are registered.
//
// Handlers declare their inputs as Go structs: query, path and header
// parameters or a JSON body. Registration exports the models' schemas into
// the document, and every request is bound into fresh model instances
// before the handler runs. Invalid input never reaches a handler; it is
// answered with an RFC 9457 problem document listing the rejected fields.
//
// # Packages
//
//   - openapi: the document builder. Paths, components, tags and schema
//     export with nested models split into named components.
//   - binding: weakly typed decoding and schema validation of raw request
//     values into models.
//   - endpoint: the registry. Parameter and body entry points, typed calls,
//     class-based views, and route materialization onto http.ServeMux.
//   - responder: JSON rendering and problem documents with trace ids.
//   - info: status, version, document export and the documentation viewer.
//   - router: request validation against the assembled document, CORS,
//     timeouts, request logging and Prometheus metrics.
//   - config: YAML and environment configuration for the weavekit command.
//   - jsonutil: thin sonic wrappers.
//
// # Quick Start
//
//	reg := endpoint.NewRegistry()
//	_, err := reg.Parameter(endpoint.ParameterSpec{
//	    Method:     http.MethodGet,
//	    URL:        "/items/{id}",
//	    Parameters: []openapi.Parameter{{Model: ItemPath{}, Location: openapi.LocationPath}},
//	    Response:   openapi.Response{Model: Item{}},
//	    Doc:        "Fetch one item",
//	}, getItem)
//
//	api := http.NewServeMux()
//	err = reg.Mount(api)
//
//	mux := router.New(api,
//	    router.WithDocument(reg.Builder()),
//	    router.WithInfoHandler(info.NewInfoHandler(info.WithDocument(reg.Builder()))),
//	)
//
// The weavekit command serves a demo items API assembled this way and
// exports its document as JSON or YAML.
package weavekit
