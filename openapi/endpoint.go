package openapi

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
)

var supportedMethods = []string{
	http.MethodConnect,
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
	http.MethodTrace,
}

// NormalizeMethod upper-cases method and checks OpenAPI can describe it.
func NormalizeMethod(method string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(method))
	if !slices.Contains(supportedMethods, upper) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	return upper, nil
}

// Endpoint is one operation contributed to the document.
type Endpoint struct {
	Method      string
	Path        string
	Tags        []string
	Summary     string
	Description string
	Parameters  openapi3.Parameters
	RequestBody *openapi3.RequestBody
	Responses   map[int]*openapi3.Response
}

// AddEndpoint stores the operation at paths[Path][Method]. Operations for
// other methods on the same path are left untouched.
func (b *Builder) AddEndpoint(e Endpoint) error {
	method, err := NormalizeMethod(e.Method)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}

	op := &openapi3.Operation{
		Summary:     e.Summary,
		Description: e.Description,
		Parameters:  e.Parameters,
		Responses:   buildResponses(e.Responses),
	}
	if e.RequestBody != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: e.RequestBody}
	}
	if len(e.Tags) > 0 {
		op.Tags = b.addTags(e.Tags)
	}

	item := b.doc.Paths.Value(e.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		b.doc.Paths.Set(e.Path, item)
	}
	item.SetOperation(method, op)
	return nil
}

func buildResponses(responses map[int]*openapi3.Response) *openapi3.Responses {
	codes := lo.Keys(responses)
	slices.Sort(codes)

	opts := make([]openapi3.NewResponsesOption, 0, len(codes))
	for _, code := range codes {
		opts = append(opts, openapi3.WithStatus(code, &openapi3.ResponseRef{Value: responses[code]}))
	}
	return openapi3.NewResponses(opts...)
}
