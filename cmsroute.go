package cmsroute

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/cmsroute/internal"
	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/health"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// Type aliases - public API
type (
	// App serves resolved routes over HTTP.
	// It manages the mux, middleware, and graceful shutdown.
	App = internal.App

	// Registry maps class identifiers to handlers.
	Registry = internal.Registry

	// Router builds a route table from one registry namespace and
	// resolves requests against it.
	Router = internal.Router

	// RouteInfo is the result of resolving one request.
	RouteInfo = internal.RouteInfo

	// Status is the outcome of a resolution.
	Status = internal.Status

	// Table is an ordered collection of route groups.
	Table = internal.Table

	// Group is a batch of route entries sharing a path prefix.
	Group = internal.Group

	// RouteEntry is one route of a table.
	RouteEntry = internal.RouteEntry

	// HandlerRef identifies the handler class and method of a route.
	HandlerRef = internal.HandlerRef

	// Context provides request data and response helpers.
	Context = internal.Context

	// Handler serves the requests resolved to its class.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// ActionHandler serves routes whose method is not DefaultMethod.
	ActionHandler = internal.ActionHandler

	// CrudHandler is a handler bound to a model, required by the CRUD router.
	CrudHandler = internal.CrudHandler

	// PathProvider overrides the derived path of a handler.
	PathProvider = internal.PathProvider

	// VerbProvider overrides the default verbs of a handler.
	VerbProvider = internal.VerbProvider

	// NameProvider overrides the derived route name of a handler.
	NameProvider = internal.NameProvider

	// Abstracter marks handlers that must not be routed.
	Abstracter = internal.Abstracter

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RouterOption configures a Router.
	RouterOption = internal.RouterOption

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// WebsiteResolver maps a domain to a website id.
	WebsiteResolver = internal.WebsiteResolver

	// Metrics holds the router Prometheus collectors.
	Metrics = internal.Metrics

	// MetricsOption configures Metrics.
	MetricsOption = internal.MetricsOption

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// ResponseWriter wraps http.ResponseWriter with status tracking.
	ResponseWriter = internal.ResponseWriter

	// HTTPError is an error carrying an HTTP response.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// InvalidValueError reports a route declaration that cannot be built.
	InvalidValueError = internal.InvalidValueError

	// Extractor tries value sources in order.
	Extractor = internal.Extractor

	// ExtractorSource extracts a value from the request context.
	ExtractorSource = internal.ExtractorSource
)

// Router type tags.
const (
	TypeWeb     = internal.TypeWeb
	TypeCrud    = internal.TypeCrud
	TypeGraphQL = internal.TypeGraphQL
	TypeWebhook = internal.TypeWebhook
)

// Web areas.
const (
	AreaFrontend = internal.AreaFrontend
	AreaAdmin    = internal.AreaAdmin
)

// Resolution statuses.
const (
	StatusNotFound         = internal.StatusNotFound
	StatusFound            = internal.StatusFound
	StatusMethodNotAllowed = internal.StatusMethodNotAllowed
)

// DefaultMethod is the handler method recorded for scanned routes.
const DefaultMethod = internal.DefaultMethod

// Errors
var (
	ErrInvalidValue   = internal.ErrInvalidValue
	ErrRouteNotFound  = internal.ErrRouteNotFound
	ErrDuplicateClass = internal.ErrDuplicateClass
	ErrUnknownHandler = internal.ErrUnknownHandler
	ErrTableCorrupted = internal.ErrTableCorrupted
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	reg := cmsroute.NewRegistry().
//	    MustRegister("web/frontend/Home", handlers.NewHome(repo)).
//	    MustRegister("web/admin/Login", handlers.NewLogin(repo))
//
//	app := cmsroute.New(
//	    cmsroute.WithRegistry(reg),
//	    cmsroute.WithRouters(cmsroute.NewWebRouter(reg, cmsroute.WithRewriteStore(store))),
//	)
//
//	err := app.Run(":8080", cmsroute.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return internal.NewRegistry()
}

// NewWebRouter creates the router for page handlers under web/.
func NewWebRouter(reg *Registry, opts ...RouterOption) *Router {
	return internal.NewWebRouter(reg, opts...)
}

// NewCrudRouter creates the router for CrudHandlers under crud/, mounted at /crud.
func NewCrudRouter(reg *Registry, opts ...RouterOption) *Router {
	return internal.NewCrudRouter(reg, opts...)
}

// NewGraphQLRouter creates the router for handlers under graphql/, mounted at /graphql.
func NewGraphQLRouter(reg *Registry, opts ...RouterOption) *Router {
	return internal.NewGraphQLRouter(reg, opts...)
}

// NewWebhooksRouter creates the router for handlers under webhooks/, mounted at /webhooks.
func NewWebhooksRouter(reg *Registry, opts ...RouterOption) *Router {
	return internal.NewWebhooksRouter(reg, opts...)
}

// NewMetrics registers the router collectors. Share the result between routers.
func NewMetrics(opts ...MetricsOption) *Metrics {
	return internal.NewMetrics(opts...)
}

// App options

// WithRegistry sets the registry resolved classes are dispatched to.
func WithRegistry(reg *Registry) Option {
	return internal.WithRegistry(reg)
}

// WithRouters adds routers. The web router handles every path the
// others do not claim.
func WithRouters(routers ...*Router) Option {
	return internal.WithRouters(routers...)
}

// WithWebsiteResolver sets the mapping behind Context.WebsiteID.
func WithWebsiteResolver(w WebsiteResolver) Option {
	return internal.WithWebsiteResolver(w)
}

// WithMaintenance starts the App in maintenance mode.
func WithMaintenance(on bool) Option {
	return internal.WithMaintenance(on)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints.
//
// Example:
//
//	cmsroute.WithHealthChecks(
//	    cmsroute.WithReadinessCheck("rewrites", rewrite.Healthcheck(store)),
//	    cmsroute.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
//
// Example:
//
//	cmsroute.WithLogger("cms", cfg.Logger,
//	    middlewares.RequestIDExtractor(),
//	    cmsroute.RouteExtractor(),
//	)
func WithLogger(component string, cfg logger.Config, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, cfg, extractors...)
}

// WithCustomLogger sets a fully custom logger.
// If nil, the default (noop) logger is kept.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// RouteExtractor adds the resolved route to log entries.
func RouteExtractor() ContextExtractor {
	return internal.RouteExtractor()
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Router options

// WithCache sets the route cache shared between workers.
//
// Example:
//
//	client, err := redis.OpenConfig(ctx, cfg.Redis)
//	cmsroute.WithCache(cache.NewRedis[[]byte](client, cache.Raw{}, cache.WithPrefix("cms:")))
func WithCache(c cache.Cache[[]byte]) RouterOption {
	return internal.WithCache(c)
}

// WithCacheTTL sets the expiration of cached tables and rewrite snapshots.
func WithCacheTTL(d time.Duration) RouterOption {
	return internal.WithCacheTTL(d)
}

// WithRewriteStore sets the store queried for pretty URLs by the web router.
func WithRewriteStore(s rewrite.Finder) RouterOption {
	return internal.WithRewriteStore(s)
}

// WithWebsites sets the domain to website mapping used for rewrite lookups.
func WithWebsites(w WebsiteResolver) RouterOption {
	return internal.WithWebsites(w)
}

// WithRouterLogger sets the router logger.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return internal.WithRouterLogger(l)
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) RouterOption {
	return internal.WithMetrics(m)
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) RouterOption {
	return internal.WithTracerProvider(tp)
}

// WithBaseURL sets the URL prefixed to generated links.
func WithBaseURL(u string) RouterOption {
	return internal.WithBaseURL(u)
}

// WithArea maps a web area to its path prefix.
func WithArea(area, prefix string) RouterOption {
	return internal.WithArea(area, prefix)
}

// WithStrictNames rejects route names shared by several handler classes.
func WithStrictNames(strict bool) RouterOption {
	return internal.WithStrictNames(strict)
}

// Metrics options

func WithMetricsRegistry(reg prometheus.Registerer) MetricsOption {
	return internal.WithMetricsRegistry(reg)
}

func WithMetricsNamespace(ns string) MetricsOption {
	return internal.WithMetricsNamespace(ns)
}

func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return internal.WithConstLabels(labels)
}

func WithBuckets(buckets []float64) MetricsOption {
	return internal.WithBuckets(buckets)
}

// Run options

// Address sets the server listen address.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the logger for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the maximum duration to wait for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server listens.
// A failing hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ReloadHook registers a function run on SIGHUP after the route tables
// were rebuilt.
func ReloadHook(fn func(context.Context) error) RunOption {
	return internal.ReloadHook(fn)
}

// ShutdownHook registers a cleanup function called during graceful shutdown.
//
// Example:
//
//	app.Run(":8080",
//	    cmsroute.ShutdownHook(redis.Shutdown(client)),
//	    cmsroute.ShutdownHook(func(context.Context) error { return store.Close() }),
//	)
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrMethodNotAllowed creates a 405 HTTPError listing the accepted verbs.
func ErrMethodNotAllowed(allowed []string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrMethodNotAllowed(allowed, opts...)
}

// ErrServiceUnavailable creates a 503 HTTPError.
func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func WithAllowed(verbs ...string) HTTPErrorOption {
	return internal.WithAllowed(verbs...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the HTTPError from err, or returns nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Helpers

// NewResponseWriter wraps w with status tracking.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return internal.NewResponseWriter(w)
}

// AllVerbs returns the HTTP verbs a route may declare.
func AllVerbs() []string {
	return internal.AllVerbs()
}

// RouteInfoFromContext returns the RouteInfo stored for the request.
func RouteInfoFromContext(ctx context.Context) (RouteInfo, bool) {
	return internal.RouteInfoFromContext(ctx)
}

// WithRequestBaseURL stores the base URL used by URLFor when the router
// has none configured.
func WithRequestBaseURL(ctx context.Context, u string) context.Context {
	return internal.WithRequestBaseURL(ctx, u)
}

// RequestBaseURL derives scheme://host from a request.
func RequestBaseURL(req *http.Request) string {
	return internal.RequestBaseURL(req)
}

// Scalar lists the types route variables and query parameters convert to.
type Scalar = internal.Scalar

// ContextValue retrieves a typed value from the request context.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed path variable, or the zero value.
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Var converts a variable of a resolved route.
func Var[T Scalar](ri RouteInfo, name string) (T, bool) {
	return internal.Var[T](ri, name)
}

// Query returns a typed query parameter, or the zero value.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter, or defaultValue.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Extractors

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource  { return internal.FromQuery(name) }
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }
func FromParam(name string) ExtractorSource  { return internal.FromParam(name) }
func FromBearerToken() ExtractorSource       { return internal.FromBearerToken() }
