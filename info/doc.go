// Package info serves the assembled OpenAPI document and a browser viewer
// for it, together with small status and version endpoints.
//
// The viewer page is rendered from an embedded template that loads one of
// several documentation UIs from a CDN and points it at the JSON endpoint:
//   - SwaggerUI (default)
//   - Stoplight Elements
//   - Scalar
//   - Redoc
//
// Use WithUIType to select another UI and WithDocument to serve the
// document held by an openapi.Builder.
package info
