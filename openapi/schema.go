package openapi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// ComponentRefPrefix is the pointer prefix used for every registered model.
const ComponentRefPrefix = "#/components/schemas/"

// SchemaDescriber is implemented by models that describe their own schema
// instead of relying on reflection. Nested models referenced from Schema
// must use ComponentRef pointers and be listed in Definitions.
type SchemaDescriber interface {
	DescribeSchema() ModelSchema
}

// ModelSchema is the exported form of a model: its own schema plus the
// named schemas of the models it references.
type ModelSchema struct {
	Schema      *openapi3.Schema
	Definitions openapi3.Schemas
}

// ComponentRef returns the component pointer for a model name.
func ComponentRef(name string) string {
	return ComponentRefPrefix + name
}

// ModelName returns the component name of a model: the name of its
// underlying named type.
func ModelName(model any) string {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// ExportSchema returns the schema of model with nested models split out
// into Definitions and referenced through ComponentRef pointers.
func ExportSchema(model any) (ModelSchema, error) {
	if model == nil {
		return ModelSchema{}, ErrNilModel
	}
	if describer, ok := model.(SchemaDescriber); ok {
		exported := describer.DescribeSchema()
		if exported.Schema == nil {
			return ModelSchema{}, fmt.Errorf("%w: %s describes no schema", ErrInvalidModel, ModelName(model))
		}
		return exported, nil
	}

	defs := make(openapi3.Schemas)
	ref, err := newGenerator(true).NewSchemaRefForValue(model, defs)
	if err != nil {
		return ModelSchema{}, fmt.Errorf("export schema for %s: %w", ModelName(model), err)
	}

	name := ModelName(model)
	schema := ref.Value
	if schema == nil {
		if own, ok := defs[name]; ok && own.Value != nil {
			schema = own.Value
		} else {
			schema = openapi3.NewObjectSchema()
		}
	}
	delete(defs, name)

	// A component is shared by value and pointer fields alike, so
	// nullability cached from a pointer field must not leak into it.
	for _, def := range defs {
		if def != nil && def.Value != nil {
			def.Value.Nullable = false
		}
	}
	if len(defs) == 0 {
		defs = nil
	}
	return ModelSchema{Schema: schema, Definitions: defs}, nil
}

// InlineSchema returns a self-contained schema for model with every nested
// model inlined. It backs parameter emission and input validation.
func InlineSchema(model any) (*openapi3.Schema, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if describer, ok := model.(SchemaDescriber); ok {
		exported := describer.DescribeSchema()
		if exported.Schema == nil {
			return nil, fmt.Errorf("%w: %s describes no schema", ErrInvalidModel, ModelName(model))
		}
		return inlineRefs(exported.Schema, exported.Definitions, 0), nil
	}

	ref, err := newGenerator(false).NewSchemaRefForValue(model, nil)
	if err != nil {
		return nil, fmt.Errorf("inline schema for %s: %w", ModelName(model), err)
	}
	if ref.Value == nil {
		return openapi3.NewObjectSchema(), nil
	}
	return ref.Value, nil
}

func newGenerator(components bool) *openapi3gen.Generator {
	opts := []openapi3gen.Option{
		openapi3gen.UseAllExportedFields(),
		openapi3gen.SchemaCustomizer(markRequiredFields),
	}
	if components {
		opts = append(opts, openapi3gen.CreateComponentSchemas(openapi3gen.ExportComponentSchemasOptions{
			ExportComponentSchemas: true,
		}))
	}
	return openapi3gen.NewGenerator(opts...)
}

// markRequiredFields lists every field that is neither a pointer nor
// tagged omitempty as required.
func markRequiredFields(_ string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || schema == nil {
		return nil
	}
	if required := requiredFields(t); len(required) > 0 {
		schema.Required = required
	}
	return nil
}

func requiredFields(t reflect.Type) []string {
	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				continue
			}
			if embedded.Kind() == reflect.Struct {
				required = append(required, requiredFields(embedded)...)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if field.Type.Kind() == reflect.Pointer || hasOption(opts, "omitempty") || hasOption(opts, "omitzero") {
			continue
		}
		if name == "" {
			name = field.Name
		}
		required = append(required, name)
	}
	return required
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

const maxInlineDepth = 16

// inlineRefs copies schema replacing component pointers found in defs with
// their values. Recursive models stop inlining at maxInlineDepth.
func inlineRefs(schema *openapi3.Schema, defs openapi3.Schemas, depth int) *openapi3.Schema {
	if schema == nil || len(defs) == 0 || depth > maxInlineDepth {
		return schema
	}

	clone := *schema
	if len(schema.Properties) > 0 {
		clone.Properties = make(openapi3.Schemas, len(schema.Properties))
		for name, prop := range schema.Properties {
			clone.Properties[name] = inlineRef(prop, defs, depth)
		}
	}
	if schema.Items != nil {
		clone.Items = inlineRef(schema.Items, defs, depth)
	}
	return &clone
}

func inlineRef(ref *openapi3.SchemaRef, defs openapi3.Schemas, depth int) *openapi3.SchemaRef {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		def, ok := defs[strings.TrimPrefix(ref.Ref, ComponentRefPrefix)]
		if !ok || def.Value == nil {
			return ref
		}
		return &openapi3.SchemaRef{Value: inlineRefs(def.Value, defs, depth+1)}
	}
	return &openapi3.SchemaRef{Value: inlineRefs(ref.Value, defs, depth+1)}
}
