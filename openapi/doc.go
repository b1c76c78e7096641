// Package openapi assembles a single OpenAPI 3 document from per-endpoint
// contributions. A Builder owns one kin-openapi document and merges paths,
// component schemas and tags into it as endpoints are registered. Models
// either describe their own schema through SchemaDescriber or are reflected
// with openapi3gen.
//
// The builder has two phases: populate during startup, then Freeze and
// serve the document read-only. See ExampleBuilder for a minimal wiring.
package openapi
