package info

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/responder"
)

// InfoProvider returns the payload that will be exposed by the version endpoint.
type InfoProvider func() any

// DocumentProvider returns the OpenAPI document as JSON.
type DocumentProvider func() ([]byte, error)

// InfoOption follows the functional options pattern used by NewInfoHandler to
// configure optional collaborators such as the responder, base URL, and
// information providers.
type InfoOption func(*InfoHandler)

// TemplateDataProvider allows callers to customise the data payload passed to
// the OpenAPI HTML template at render time.
type TemplateDataProvider func(r *http.Request, baseURL string) any

// InfoHandler serves the OpenAPI document, the viewer page and the status
// and version endpoints.
type InfoHandler struct {
	*responder.Responder
	baseURL          string
	infoProvider     InfoProvider
	documentProvider DocumentProvider
	openapiTemplate  *template.Template
	dataProvider     TemplateDataProvider
	uiType           UIType
}

// NewInfoHandler constructs an InfoHandler rendering the SwaggerUI viewer.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder: responder.NewResponder(),
		infoProvider: func() any {
			return map[string]string{}
		},
		documentProvider: func() ([]byte, error) {
			return nil, errors.New("openapi document provider not configured")
		},
		openapiTemplate: templateSwaggerUI,
		dataProvider:    defaultTemplateDataProvider,
		uiType:          UISwaggerUI,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

// WithInfoResponder replaces the responder used to craft JSON responses and
// handle error reporting.
func WithInfoResponder(responder *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if responder != nil {
			ih.Responder = responder
		}
	}
}

// WithBaseURL sets the URL prefix the viewer uses to reach the JSON endpoint.
func WithBaseURL(baseURL string) InfoOption {
	return func(ih *InfoHandler) {
		ih.baseURL = baseURL
	}
}

// WithInfoProvider swaps the default metadata provider with a user supplied
// implementation.
func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.infoProvider = provider
		}
	}
}

// WithDocumentProvider sets the source of the OpenAPI JSON document.
func WithDocumentProvider(provider DocumentProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.documentProvider = provider
		}
	}
}

// WithDocument serves the document assembled by b. The version endpoint
// reports the document's info block unless WithInfoProvider is also given.
func WithDocument(b *openapi.Builder) InfoOption {
	return func(ih *InfoHandler) {
		if b == nil {
			return
		}
		ih.documentProvider = b.MarshalJSON
		ih.infoProvider = func() any {
			doc := b.Document()
			payload := map[string]string{"openapi": doc.OpenAPI}
			if doc.Info != nil {
				payload["title"] = doc.Info.Title
				payload["version"] = doc.Info.Version
			}
			return payload
		}
	}
}

// WithOpenAPITemplate injects a custom html/template instance used to render
// the OpenAPI viewer page.
func WithOpenAPITemplate(tmpl *template.Template) InfoOption {
	return func(ih *InfoHandler) {
		if tmpl != nil {
			ih.openapiTemplate = tmpl
		}
	}
}

// WithOpenAPITemplateData overrides the template data provider that runs for
// each request to the HTML endpoint.
func WithOpenAPITemplateData(provider TemplateDataProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.dataProvider = provider
		}
	}
}

// WithUIType sets the OpenAPI documentation UI to use. Unknown values fall
// back to SwaggerUI.
func WithUIType(uiType UIType) InfoOption {
	return func(ih *InfoHandler) {
		ih.uiType = uiType
		ih.openapiTemplate = templateFor(uiType)
	}
}

// UI returns the configured documentation UI.
func (ih *InfoHandler) UI() UIType {
	return ih.uiType
}

func defaultTemplateDataProvider(_ *http.Request, baseURL string) any {
	return map[string]any{
		"BaseURL": baseURL,
		"SpecURL": OpenAPISpecURL(baseURL),
	}
}
