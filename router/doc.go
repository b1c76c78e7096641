// Package router wraps http.ServeMux with OpenAPI request validation, CORS,
// timeouts, request logging and Prometheus metrics. The API handler is
// validated against the document it was registered into; the info endpoints
// share the remaining middlewares. ExampleNew_customOptions demonstrates how
// to combine built-in and custom middlewares.
package router
