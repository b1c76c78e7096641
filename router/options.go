package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drblury/weavekit/info"
	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/responder"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures the router via the functional options pattern.
type Option func(*options)

type options struct {
	config        Config
	logger        *slog.Logger
	swagger       *openapi3.T
	document      *openapi.Builder
	infoHandler   *info.InfoHandler
	responder     *responder.Responder
	metrics       *prometheus.Registry
	prepend       []Middleware
	append        []Middleware
	override      []Middleware
	enableOpenAPI bool
	enableCORS    bool
	enableTimeout bool
	enableLogging bool
}

func defaultOptions() *options {
	return &options{
		config: Config{
			Timeout: 30 * time.Second,
		},
		logger:        slog.Default(),
		enableOpenAPI: true,
		enableCORS:    true,
		enableTimeout: true,
		enableLogging: true,
	}
}

// middlewareChain returns the chain for one mounted handler. Request
// validation only applies to the API handler; the info and metrics
// endpoints are not part of the document.
func (o *options) middlewareChain(label string, validate bool) []Middleware {
	if len(o.override) > 0 {
		return slices.Clone(o.override)
	}

	chain := make([]Middleware, 0, len(o.prepend)+len(o.append)+5)
	chain = append(chain, o.prepend...)
	chain = append(chain, o.defaultMiddlewares(label, validate)...)
	chain = append(chain, o.append...)
	return chain
}

func (o *options) defaultMiddlewares(label string, validate bool) []Middleware {
	chain := make([]Middleware, 0, 5)

	if o.metrics != nil {
		chain = append(chain, metricsMiddleware(o.metrics, label))
	}

	if validate && o.enableOpenAPI && o.swagger != nil {
		chain = append(chain, oapiMiddleware(o.swagger, o.responder))
	}

	if o.enableCORS && len(o.config.CORS.Origins) > 0 {
		chain = append(chain, corsMiddleware(o.config.CORS))
	}

	if o.enableTimeout && o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}

	if o.enableLogging && o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}

	return chain
}

// WithConfig replaces the router configuration with the provided value.
func WithConfig(cfg Config) Option {
	configCopy := sanitizeConfig(cfg)
	return func(o *options) {
		o.config = configCopy
	}
}

// WithConfigMutator applies a mutation to the router configuration after defaults are set.
func WithConfigMutator(mutator func(*Config)) Option {
	return func(o *options) {
		if mutator != nil {
			mutator(&o.config)
		}
	}
}

// WithLogger provides the structured logger to be used by the logging middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSwagger wires the OpenAPI document for request validation.
func WithSwagger(swagger *openapi3.T) Option {
	return func(o *options) {
		o.swagger = swagger
	}
}

// WithDocument validates API requests against the document assembled by b.
// New freezes the builder so its references are resolved before use.
func WithDocument(b *openapi.Builder) Option {
	return func(o *options) {
		o.document = b
	}
}

// WithResponder renders validation rejections. A responder using the
// router logger is created when none is given.
func WithResponder(resp *responder.Responder) Option {
	return func(o *options) {
		o.responder = resp
	}
}

// WithInfoHandler mounts the info endpoints next to the API handler.
func WithInfoHandler(ih *info.InfoHandler) Option {
	return func(o *options) {
		o.infoHandler = ih
	}
}

// WithMetrics records request counts and latencies in reg and serves them
// on MetricsPath.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.metrics = reg
	}
}

// WithMiddlewares prepends custom middlewares ahead of the default chain.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.prepend = append(o.prepend, middlewares...)
	}
}

// WithTrailingMiddlewares appends middlewares after the default chain.
func WithTrailingMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.append = append(o.append, middlewares...)
	}
}

// WithMiddlewareChain fully overrides the middleware chain with the provided sequence.
func WithMiddlewareChain(middlewares ...Middleware) Option {
	cloned := slices.Clone(middlewares)
	return func(o *options) {
		o.override = cloned
	}
}

// WithoutOpenAPIValidation disables the OpenAPI validation middleware.
func WithoutOpenAPIValidation() Option {
	return func(o *options) {
		o.enableOpenAPI = false
	}
}

// WithoutCORSMiddleware disables the CORS middleware regardless of configuration.
func WithoutCORSMiddleware() Option {
	return func(o *options) {
		o.enableCORS = false
	}
}

// WithoutTimeoutMiddleware disables the timeout middleware.
func WithoutTimeoutMiddleware() Option {
	return func(o *options) {
		o.enableTimeout = false
	}
}

// WithoutLoggingMiddleware disables the logging middleware.
func WithoutLoggingMiddleware() Option {
	return func(o *options) {
		o.enableLogging = false
	}
}

func sanitizeConfig(cfg Config) Config {
	cfg.QuietdownRoutes = slices.Clone(cfg.QuietdownRoutes)
	cfg.HideHeaders = slices.Clone(cfg.HideHeaders)
	cfg.CORS.Origins = slices.Clone(cfg.CORS.Origins)
	cfg.CORS.Methods = slices.Clone(cfg.CORS.Methods)
	cfg.CORS.Headers = slices.Clone(cfg.CORS.Headers)
	return cfg
}
