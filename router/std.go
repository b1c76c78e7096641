package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/weavekit/info"
	"github.com/drblury/weavekit/responder"
)

// New returns a new *http.ServeMux serving apiHandle behind the configured
// middleware chain. Info and metrics endpoints, when enabled, are mounted on
// the same mux with their own chain that skips request validation.
func New(apiHandle http.Handler, opts ...Option) *http.ServeMux {
	if apiHandle == nil {
		panic("router: handler cannot be nil")
	}

	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}
	if settings.logger == nil {
		settings.logger = slog.Default()
	}
	if settings.responder == nil {
		settings.responder = responder.NewResponder(responder.WithLogger(settings.logger))
	}
	settings.useDocument()

	mux := http.NewServeMux()
	mux.Handle("/", applyMiddlewares(apiHandle, settings.middlewareChain("api", true)))

	if settings.infoHandler != nil {
		infoMux := http.NewServeMux()
		settings.infoHandler.Register(infoMux)
		infoHandle := applyMiddlewares(infoMux, settings.middlewareChain("info", false))
		for _, path := range info.Paths() {
			mux.Handle(path, infoHandle)
		}
	}

	if settings.metrics != nil {
		mux.Handle(MetricsPath, promhttp.HandlerFor(settings.metrics, promhttp.HandlerOpts{Registry: settings.metrics}))
	}
	return mux
}

func (o *options) useDocument() {
	if o.document == nil {
		return
	}
	if err := o.document.Freeze(); err != nil {
		o.logger.Error("failed to freeze openapi document, request validation disabled", "error", err)
		return
	}
	o.swagger = o.document.Document()
}

func applyMiddlewares(handler http.Handler, middlewares []Middleware) http.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		if middleware == nil {
			continue
		}
		handler = middleware(handler)
	}

	return handler
}

// oapiMiddleware rejects requests the document does not allow. Rejections
// are rendered as problem documents by resp.
func oapiMiddleware(swagger *openapi3.T, resp *responder.Responder) Middleware {
	return func(next http.Handler) http.Handler {
		// Server URLs are not checked; the mux may run behind any host.
		swagger.Servers = nil

		validatorOptions := &oapiMW.Options{
			ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
				resp.HandleAPIError(w, nil, statusCode, errors.New(message), "request rejected by openapi validation")
			},
			Options: openapi3filter.Options{
				// Authentication is the host's concern.
				AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error {
					return nil
				},
			},
		}

		return oapiMW.OapiRequestValidatorWithOptions(swagger, validatorOptions)(next)
	}
}
