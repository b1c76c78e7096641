package openapi

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
)

// JSONMediaType is the default request and response media type.
const JSONMediaType = "application/json"

// Location tells where a parameter model is read from.
type Location string

const (
	LocationQuery  Location = openapi3.ParameterInQuery
	LocationPath   Location = openapi3.ParameterInPath
	LocationHeader Location = openapi3.ParameterInHeader
)

// Valid reports whether l is one of the supported locations.
func (l Location) Valid() bool {
	switch l {
	case LocationQuery, LocationPath, LocationHeader:
		return true
	default:
		return false
	}
}

// Parameter declares a model whose properties are bound from one request
// location. An empty Location means query.
type Parameter struct {
	Model    any
	Location Location
}

// In returns the effective location.
func (p Parameter) In() Location {
	if p.Location == "" {
		return LocationQuery
	}
	return p.Location
}

// Body declares the model decoded from the request body.
type Body struct {
	Model       any
	Description string
	ContentType string
}

// MediaType returns the effective content type.
func (b Body) MediaType() string {
	if b.ContentType == "" {
		return JSONMediaType
	}
	return b.ContentType
}

// Response declares the model a handler answers with.
type Response struct {
	Model       any
	StatusCode  int
	Description string
	Accept      string
}

// Status returns the effective success status code.
func (r Response) Status() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

// MediaType returns the effective accept media type.
func (r Response) MediaType() string {
	if r.Accept == "" {
		return JSONMediaType
	}
	return r.Accept
}

// ToParameters emits one parameter per property of every declared model.
// A parameter is required when its property is listed in the model's
// required list.
func (b *Builder) ToParameters(params []Parameter) (openapi3.Parameters, error) {
	var results openapi3.Parameters
	for _, param := range params {
		in := param.In()
		if !in.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, in)
		}

		schema, err := InlineSchema(param.Model)
		if err != nil {
			return nil, err
		}

		for _, name := range sortedKeys(schema.Properties) {
			results = append(results, &openapi3.ParameterRef{Value: &openapi3.Parameter{
				Name:     name,
				In:       string(in),
				Required: slices.Contains(schema.Required, name),
				Schema:   schema.Properties[name],
			}})
		}
	}
	return results, nil
}

// ToRequestBody registers the body model and returns a request body that
// references it.
func (b *Builder) ToRequestBody(body Body) (*openapi3.RequestBody, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return nil, ErrFrozen
	}
	name, err := b.registerModel(body.Model)
	if err != nil {
		return nil, err
	}

	return &openapi3.RequestBody{
		Description: body.Description,
		Required:    true,
		Content:     refContent(body.MediaType(), name),
	}, nil
}

// ToResponse registers the response model and returns the response keyed
// by its status code.
func (b *Builder) ToResponse(resp Response) (map[int]*openapi3.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return nil, ErrFrozen
	}
	name, err := b.registerModel(resp.Model)
	if err != nil {
		return nil, err
	}

	out := openapi3.NewResponse().
		WithDescription(resp.Description).
		WithContent(refContent(resp.MediaType(), name))
	return map[int]*openapi3.Response{resp.Status(): out}, nil
}

func refContent(mediaType, name string) openapi3.Content {
	return openapi3.Content{
		mediaType: &openapi3.MediaType{Schema: openapi3.NewSchemaRef(ComponentRef(name), nil)},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
