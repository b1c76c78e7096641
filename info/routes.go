package info

import (
	"errors"
	"net/http"
	"strings"

	"github.com/oasdiff/yaml"
)

// Paths served by Register.
const (
	StatusPath      = "/info/status"
	VersionPath     = "/info/version"
	OpenAPIPath     = "/info/openapi.json"
	OpenAPIYAMLPath = "/info/openapi.yaml"
	DocsPath        = "/docs"
)

// OpenAPISpecURL joins baseURL and the JSON endpoint path.
func OpenAPISpecURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + OpenAPIPath
}

type statusPayload struct {
	Status string `json:"status"`
}

// Register binds every info endpoint on mux.
func (ih *InfoHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+StatusPath, ih.GetStatus)
	mux.HandleFunc("GET "+VersionPath, ih.GetVersion)
	mux.HandleFunc("GET "+OpenAPIPath, ih.GetOpenAPIJSON)
	mux.HandleFunc("GET "+OpenAPIYAMLPath, ih.GetOpenAPIYAML)
	mux.HandleFunc("GET "+DocsPath, ih.GetOpenAPIHTML)
}

// Paths lists the paths Register binds.
func Paths() []string {
	return []string{StatusPath, VersionPath, OpenAPIPath, OpenAPIYAMLPath, DocsPath}
}

// GetStatus returns a simple health payload that can be used for lightweight diagnostics.
func (ih *InfoHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	ih.RespondWithJSON(w, http.StatusOK, statusPayload{Status: "HEALTHY"})
}

// GetVersion returns the structure provided by the configured InfoProvider.
func (ih *InfoHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	payload := ih.infoProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	ih.RespondWithJSON(w, http.StatusOK, payload)
}

// GetOpenAPIJSON writes the OpenAPI document.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	data, err := ih.documentProvider()
	if err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to load openapi document")
		return
	}
	ih.writeDocument(w, r, "application/json", data)
}

// GetOpenAPIYAML writes the OpenAPI document converted to YAML.
func (ih *InfoHandler) GetOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	data, err := ih.documentProvider()
	if err == nil {
		data, err = yaml.JSONToYAML(data)
	}
	if err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to load openapi document")
		return
	}
	ih.writeDocument(w, r, "application/yaml", data)
}

func (ih *InfoHandler) writeDocument(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		ih.Logger().ErrorContext(r.Context(), "failed to write openapi document", "error", err)
	}
}

// GetOpenAPIHTML renders the configured viewer pointed at the JSON endpoint.
func (ih *InfoHandler) GetOpenAPIHTML(w http.ResponseWriter, r *http.Request) {
	if ih.openapiTemplate == nil {
		err := errors.New("openapi template not configured")
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to render openapi template")
		return
	}

	var data any
	if ih.dataProvider != nil {
		data = ih.dataProvider(r, ih.baseURL)
	}
	if data == nil {
		data = defaultTemplateDataProvider(r, ih.baseURL)
	}

	var page strings.Builder
	if err := ih.openapiTemplate.Execute(&page, data); err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to render openapi template")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if _, err := w.Write([]byte(page.String())); err != nil {
		ih.Logger().ErrorContext(r.Context(), "failed to write openapi page", "error", err)
	}
}
