package openapi

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/oasdiff/yaml"

	"github.com/drblury/weavekit/jsonutil"
)

// DefaultVersion is the OpenAPI version written when none is configured.
const DefaultVersion = "3.0.3"

// Option configures a Builder via the functional options pattern.
type Option func(*Builder)

// Builder accumulates a single OpenAPI document across endpoint
// registrations. It is safe for concurrent use, although registration is
// expected to happen once during startup.
type Builder struct {
	mu     sync.RWMutex
	doc    *openapi3.T
	logger *slog.Logger
	strict bool
	frozen bool
}

// NewBuilder returns a Builder holding an empty document.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		doc: &openapi3.T{
			OpenAPI: DefaultVersion,
			Info:    &openapi3.Info{},
			Paths:   openapi3.NewPaths(),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// WithLogger sets the logger used to report schema overwrites.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStrictSchemas rejects registering a different schema under an
// existing component name instead of overwriting it.
func WithStrictSchemas() Option {
	return func(b *Builder) {
		b.strict = true
	}
}

// WithVersion sets the initial OpenAPI version string.
func WithVersion(version string) Option {
	return func(b *Builder) {
		if version != "" {
			b.doc.OpenAPI = version
		}
	}
}

// WithInfo sets the initial info block.
func WithInfo(title, version, description string) Option {
	return func(b *Builder) {
		b.doc.Info = &openapi3.Info{Title: title, Version: version, Description: description}
	}
}

// SetVersion overwrites the document's OpenAPI version.
func (b *Builder) SetVersion(version string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}
	b.doc.OpenAPI = version
	return nil
}

// SetInfo overwrites the document's info block.
func (b *Builder) SetInfo(title, version, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}
	b.doc.Info = &openapi3.Info{Title: title, Version: version, Description: description}
	return nil
}

// Document returns the assembled document. Callers must treat it as
// read-only; mutate it through the Builder instead.
func (b *Builder) Document() *openapi3.T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc
}

// Freeze resolves component references so the document can back request
// validation and marks the builder read-only. Freezing twice is a no-op.
func (b *Builder) Freeze() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return nil
	}
	if err := openapi3.NewLoader().ResolveRefsIn(b.doc, nil); err != nil {
		return fmt.Errorf("resolve document references: %w", err)
	}
	b.frozen = true
	return nil
}

// Frozen reports whether Freeze has been called.
func (b *Builder) Frozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// Validate runs kin-openapi's structural validation over the document.
func (b *Builder) Validate(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.Validate(ctx)
}

// MarshalJSON exports the document with empty fields omitted.
func (b *Builder) MarshalJSON() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return jsonutil.Marshal(b.doc)
}

// MarshalIndentJSON exports the document as indented JSON.
func (b *Builder) MarshalIndentJSON() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return jsonutil.MarshalIndent(b.doc, "", "  ")
}

// MarshalYAML exports the document as YAML.
func (b *Builder) MarshalYAML() ([]byte, error) {
	data, err := b.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(data)
}

// registerSchema stores schema under name. The last registration wins
// unless the builder is strict.
func (b *Builder) registerSchema(name string, schema *openapi3.Schema) error {
	if b.doc.Components == nil {
		b.doc.Components = &openapi3.Components{}
	}
	if b.doc.Components.Schemas == nil {
		b.doc.Components.Schemas = make(openapi3.Schemas)
	}

	if existing, ok := b.doc.Components.Schemas[name]; ok && existing.Value != nil && existing.Value != schema {
		if !sameSchema(existing.Value, schema) {
			if b.strict {
				return fmt.Errorf("%w: %s", ErrSchemaConflict, name)
			}
			b.logger.Warn("component schema overwritten", "schema", name)
		}
	}

	b.doc.Components.Schemas[name] = openapi3.NewSchemaRef("", schema)
	return nil
}

// registerModel exports model and registers it, splitting nested
// definitions into their own components.
func (b *Builder) registerModel(model any) (string, error) {
	name := ModelName(model)
	if name == "" {
		return "", fmt.Errorf("%w: model has no type name", ErrInvalidModel)
	}

	exported, err := ExportSchema(model)
	if err != nil {
		return "", err
	}

	if err := b.registerSchema(name, exported.Schema); err != nil {
		return "", err
	}
	for _, defName := range sortedKeys(exported.Definitions) {
		def := exported.Definitions[defName]
		if def == nil || def.Value == nil {
			continue
		}
		if err := b.registerSchema(defName, def.Value); err != nil {
			return "", err
		}
	}
	return name, nil
}

func sameSchema(a, b *openapi3.Schema) bool {
	left, errA := jsonutil.Marshal(a)
	right, errB := jsonutil.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(left, right)
}
