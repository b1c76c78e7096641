package router

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/drblury/weavekit/info"
	"github.com/drblury/weavekit/openapi"
)

func TestNewAllowsMiddlewareOverride(t *testing.T) {
	var order []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	mux := New(handler, WithMiddlewareChain(
		recordingMiddleware("one", &order),
		recordingMiddleware("two", &order),
	))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	expected := []string{"one-before", "two-before", "handler", "two-after", "one-after"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("unexpected middleware order: got %v, want %v", order, expected)
	}

	if rr.Code != http.StatusTeapot {
		t.Fatalf("unexpected response code: got %d want %d", rr.Code, http.StatusTeapot)
	}
}

func TestNewSupportsPrependAndAppendMiddlewares(t *testing.T) {
	var order []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusNoContent)
	})

	mux := New(
		handler,
		WithoutOpenAPIValidation(),
		WithoutCORSMiddleware(),
		WithoutTimeoutMiddleware(),
		WithoutLoggingMiddleware(),
		WithMiddlewares(recordingMiddleware("outer", &order)),
		WithTrailingMiddlewares(recordingMiddleware("inner", &order)),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	expected := []string{"outer-before", "inner-before", "handler", "inner-after", "outer-after"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("unexpected middleware order: got %v want %v", order, expected)
	}

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected response code: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestNewAppliesCORSEnforcementFromConfig(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux := New(
		handler,
		WithConfigMutator(func(cfg *Config) {
			cfg.CORS = CORSConfig{
				Origins:          []string{"https://example.com"},
				Methods:          []string{http.MethodGet, http.MethodPost},
				Headers:          []string{"Content-Type"},
				AllowCredentials: true,
			}
		}),
	)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rr.Code, http.StatusOK)
	}

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("unexpected access-control-allow-origin: got %q want %q", got, "https://example.com")
	}

	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST" {
		t.Fatalf("unexpected access-control-allow-methods: got %q want %q", got, "GET,POST")
	}

	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Fatalf("unexpected access-control-allow-headers: got %q want %q", got, "Content-Type")
	}

	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("unexpected access-control-allow-credentials: got %q want %q", got, "true")
	}
}

func TestWithoutCORSMiddlewareSkipsHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux := New(
		handler,
		WithConfigMutator(func(cfg *Config) {
			cfg.CORS = CORSConfig{
				Origins: []string{"https://example.com"},
				Methods: []string{http.MethodGet},
				Headers: []string{"Authorization"},
			}
		}),
		WithoutCORSMiddleware(),
	)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected CORS headers to be skipped when middleware disabled")
	}

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status code: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestTimeoutMiddlewareCanBeDisabled(t *testing.T) {
	longHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	withTimeout := New(
		longHandler,
		WithConfig(Config{Timeout: 1 * time.Millisecond}),
	)

	withoutTimeout := New(
		longHandler,
		WithConfig(Config{Timeout: 1 * time.Millisecond}),
		WithoutTimeoutMiddleware(),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rrTimeout := httptest.NewRecorder()
	withTimeout.ServeHTTP(rrTimeout, req)
	if rrTimeout.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected timeout handler to fire, got %d", rrTimeout.Code)
	}

	rrNoTimeout := httptest.NewRecorder()
	withoutTimeout.ServeHTTP(rrNoTimeout, req)
	if rrNoTimeout.Code != http.StatusOK {
		t.Fatalf("expected handler to complete when timeout disabled, got %d", rrNoTimeout.Code)
	}
}

func TestNewPanicsWhenHandlerNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when handler is nil")
		}
	}()

	New(nil)
}

type itemPath struct {
	ID int `json:"id"`
}

type itemOut struct {
	ID int `json:"id"`
}

func itemsDocument(t *testing.T) *openapi.Builder {
	t.Helper()
	b := openapi.NewBuilder(openapi.WithInfo("Items", "1.0.0", ""))
	params, err := b.ToParameters([]openapi.Parameter{{Model: itemPath{}, Location: openapi.LocationPath}})
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	responses, err := b.ToResponse(openapi.Response{Model: itemOut{}, Description: "ok"})
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	if err := b.AddEndpoint(openapi.Endpoint{Method: http.MethodGet, Path: "/items/{id}", Parameters: params, Responses: responses}); err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	return b
}

func TestNewValidatesRequestsAgainstDocument(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	doc := itemsDocument(t)
	mux := New(handler, WithDocument(doc), WithoutLoggingMiddleware())

	if !doc.Frozen() {
		t.Fatal("expected the document to be frozen")
	}

	cases := map[string]int{
		"/items/7":   http.StatusOK,
		"/items/abc": http.StatusBadRequest,
		"/unknown":   http.StatusNotFound,
	}
	for target, want := range cases {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != want {
			t.Fatalf("GET %s: expected %d, got %d (%s)", target, want, rr.Code, rr.Body.String())
		}
		if want != http.StatusOK && rr.Header().Get("Content-Type") != "application/problem+json" {
			t.Fatalf("GET %s: expected a problem document, got %q", target, rr.Header().Get("Content-Type"))
		}
	}
}

func TestNewMountsInfoHandlerOutsideValidation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	doc := itemsDocument(t)
	mux := New(
		handler,
		WithDocument(doc),
		WithInfoHandler(info.NewInfoHandler(info.WithDocument(doc))),
		WithoutLoggingMiddleware(),
	)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, info.OpenAPIPath, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected info endpoint to bypass validation, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/items/{id}") {
		t.Fatalf("expected document paths in body, got %s", rr.Body.String())
	}
}

func TestWithMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux := New(
		handler,
		WithMetrics(reg),
		WithInfoHandler(info.NewInfoHandler()),
		WithoutLoggingMiddleware(),
	)

	for range 2 {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/jobs", nil))
	}
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, info.StatusPath, nil))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	body := rr.Body.String()
	for _, want := range []string{
		`weavekit_http_requests_total{code="202",handler="api",method="POST"} 2`,
		`weavekit_http_requests_total{code="200",handler="info",method="GET"} 1`,
		"weavekit_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition output:\n%s", want, body)
		}
	}
}

func TestNewReusesCollectorsOnSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	first := New(handler, WithMetrics(reg), WithoutLoggingMiddleware())
	second := New(handler, WithMetrics(reg), WithoutLoggingMiddleware())

	first.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	second.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil))

	rr := httptest.NewRecorder()
	second.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	want := `weavekit_http_requests_total{code="200",handler="api",method="GET"} 2`
	if !strings.Contains(rr.Body.String(), want) {
		t.Fatalf("expected %q in exposition output:\n%s", want, rr.Body.String())
	}
}

func TestLoggingMiddlewareRecordsCompletedRequests(t *testing.T) {
	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux := New(handler, WithLogger(logger), WithConfig(Config{
		QuietdownRoutes: []string{"/healthz"},
		HideHeaders:     []string{"authorization"},
	}))

	req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	mux.ServeHTTP(httptest.NewRecorder(), req)
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := logs.String()
	for _, want := range []string{"msg=request", "path=/jobs", "status=201", "[REDACTED - 13 bytes]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in logs:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("expected authorization header to be redacted:\n%s", out)
	}
	if strings.Contains(out, "path=/healthz") {
		t.Fatalf("expected quiet route to be skipped:\n%s", out)
	}
}

func recordingMiddleware(label string, sink *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*sink = append(*sink, label+"-before")
			next.ServeHTTP(w, r)
			*sink = append(*sink, label+"-after")
		})
	}
}
