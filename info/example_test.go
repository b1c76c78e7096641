package info_test

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/drblury/weavekit/info"
	"github.com/drblury/weavekit/openapi"
)

func ExampleInfoHandler_full() {
	doc := openapi.NewBuilder(openapi.WithInfo("Items API", "1.2.3", ""))
	handler := info.NewInfoHandler(
		info.WithBaseURL("https://api.example.com"),
		info.WithDocument(doc),
	)

	mux := http.NewServeMux()
	handler.Register(mux)

	versionRec := httptest.NewRecorder()
	mux.ServeHTTP(versionRec, httptest.NewRequest(http.MethodGet, info.VersionPath, nil))
	fmt.Println(versionRec.Code)
	fmt.Println(strings.TrimSpace(versionRec.Body.String()))

	specRec := httptest.NewRecorder()
	mux.ServeHTTP(specRec, httptest.NewRequest(http.MethodGet, info.OpenAPIPath, nil))
	fmt.Println(specRec.Header().Get("Content-Type"))

	// Output:
	// 200
	// {"openapi":"3.0.3","title":"Items API","version":"1.2.3"}
	// application/json
}

func ExampleInfoHandler_customTemplate() {
	handler := info.NewInfoHandler(
		info.WithBaseURL("https://api.example.com"),
		info.WithOpenAPITemplate(template.Must(template.New("docs").Parse(`<div>{{.SpecURL}}</div>`))),
	)

	rr := httptest.NewRecorder()
	handler.GetOpenAPIHTML(rr, httptest.NewRequest(http.MethodGet, info.DocsPath, nil))

	fmt.Println(rr.Code)
	fmt.Println(strings.TrimSpace(rr.Body.String()))
	// Output:
	// 200
	// <div>https://api.example.com/info/openapi.json</div>
}

func ExampleWithUIType() {
	handler := info.NewInfoHandler(info.WithUIType(info.UIRedoc))

	rr := httptest.NewRecorder()
	handler.GetOpenAPIHTML(rr, httptest.NewRequest(http.MethodGet, info.DocsPath, nil))

	fmt.Println(handler.UI())
	fmt.Println(strings.Contains(rr.Body.String(), `<redoc spec-url="/info/openapi.json">`))
	// Output:
	// redoc
	// true
}
