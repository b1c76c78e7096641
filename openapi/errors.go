package openapi

import "errors"

var (
	// ErrFrozen is returned when a frozen builder is mutated.
	ErrFrozen = errors.New("openapi: document is frozen")
	// ErrSchemaConflict is returned in strict mode when two different
	// schemas are registered under the same component name.
	ErrSchemaConflict = errors.New("openapi: conflicting component schema")
	// ErrNilModel is returned when a nil model is exported.
	ErrNilModel = errors.New("openapi: model is nil")
	// ErrInvalidModel is returned when a model cannot describe a schema.
	ErrInvalidModel = errors.New("openapi: invalid model")
	// ErrUnsupportedMethod is returned for HTTP methods OpenAPI cannot express.
	ErrUnsupportedMethod = errors.New("openapi: unsupported HTTP method")
	// ErrInvalidLocation is returned for parameter locations other than
	// query, path and header.
	ErrInvalidLocation = errors.New("openapi: invalid parameter location")
)
