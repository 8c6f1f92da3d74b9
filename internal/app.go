package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cmsroute/pkg/health"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App serves resolved routes over HTTP. Non-web routers are mounted at
// their prefix; the web router handles everything else.
// App is immutable after creation, except for the maintenance flag.
type App struct {
	mux                     chi.Router
	registry                *Registry
	web                     *Router
	websites                WebsiteResolver
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	routers                 []*Router
	middlewares             []Middleware
	staticRoutes            []staticRoute
	maintenance             atomic.Bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	reg := cmsroute.NewRegistry()
//	reg.MustRegister("web/frontend/Home", home)
//
//	app := cmsroute.New(
//	    cmsroute.WithRegistry(reg),
//	    cmsroute.WithRouters(cmsroute.NewWebRouter(reg, cmsroute.WithRewriteStore(store))),
//	    cmsroute.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
func New(opts ...Option) *App {
	a := &App{
		mux:    chi.NewRouter(),
		logger: logger.NewNope(), // Default: noop logger (before options)
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = NewRegistry()
	}

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Mux returns the underlying chi.Router.
func (a *App) Mux() chi.Router {
	return a.mux
}

// Routers returns the configured routers, the web router last.
func (a *App) Routers() []*Router {
	out := make([]*Router, 0, len(a.routers)+1)
	out = append(out, a.routers...)
	if a.web != nil {
		out = append(out, a.web)
	}
	return out
}

// Registry returns the handler registry.
func (a *App) Registry() *Registry {
	return a.registry
}

// SetMaintenance toggles maintenance mode. While enabled only routes
// that work offline are served; the rest get 503.
func (a *App) SetMaintenance(on bool) {
	a.maintenance.Store(on)
}

// Maintenance reports whether maintenance mode is enabled.
func (a *App) Maintenance() bool {
	return a.maintenance.Load()
}

// Build loads the route tables of all routers. A failing build is fatal
// for the application: Run calls it before accepting connections.
func (a *App) Build(ctx context.Context) error {
	for _, rt := range a.Routers() {
		if err := rt.Build(ctx); err != nil {
			return fmt.Errorf("%s router: %w", rt.Name(), err)
		}
	}
	return nil
}

// Reload drops every cached route table and rebuilds it from the
// registry. Other workers sharing the cache pick up the new tables on their
// next miss.
func (a *App) Reload(ctx context.Context) error {
	for _, rt := range a.Routers() {
		if err := rt.Invalidate(ctx); err != nil {
			return fmt.Errorf("%s router: %w", rt.Name(), err)
		}
	}
	return a.Build(ctx)
}

// Run builds the route tables, starts the HTTP server and blocks until
// shutdown. SIGHUP calls Reload before any ReloadHook.
//
// Example:
//
//	err := app.Run(":8080", cmsroute.Logger(log), cmsroute.ShutdownHook(redis.Shutdown(client)))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(opts...)
	if addr != "" {
		cfg.address = addr
	}
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	cfg.startup = append([]hook{a.Build}, cfg.startup...)
	cfg.reload = append([]hook{a.Reload}, cfg.reload...)

	return serve(a, cfg)
}

// setupRoutes configures the mux with health checks, static files and routers.
func (a *App) setupRoutes() {
	// Register health check endpoints
	if a.healthConfig != nil {
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks,
			health.WithLogger(a.logger)))
	}

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	for _, rt := range a.routers {
		h := a.serve(rt)
		mount := strings.TrimRight(rt.Mount(), "/")
		a.mux.Handle(mount, h)
		a.mux.Handle(mount+"/*", h)
	}

	if a.web != nil {
		a.mux.NotFound(a.serve(a.web))
		a.mux.MethodNotAllowed(a.serve(a.web))
	} else {
		a.mux.NotFound(a.serve(nil))
	}
}

// serve resolves requests with rt and dispatches them to the registered
// handler. Global middleware wraps dispatch, so it sees the resolved route.
func (a *App) serve(rt *Router) http.HandlerFunc {
	h := a.dispatch
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r = r.WithContext(WithRequestBaseURL(r.Context(), RequestBaseURL(r)))
		c := newContext(w, r, a)
		err := a.resolve(rt, c)
		if err == nil {
			err = h(c)
		}
		if err != nil {
			a.handleError(c, err)
		}

		rw := c.ResponseWriter()
		c.LogDebug("request served",
			slog.Int("status", rw.Status()),
			slog.Int64("size", rw.Size()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// resolve stores the route of the request on c. Requests no router claims
// keep a zero RouteInfo, which dispatch answers with 404.
func (a *App) resolve(rt *Router, c *requestContext) error {
	if rt == nil {
		return nil
	}
	info, err := rt.ResolveRequest(c.Request())
	if err != nil {
		return ErrInternal("", WithError(err))
	}
	c.setRoute(rt, info)
	return nil
}

func (a *App) dispatch(c Context) error {
	info := c.RouteInfo()

	switch info.Status() {
	case StatusNotFound:
		return a.notFound(c)
	case StatusMethodNotAllowed:
		c.SetHeader("Allow", strings.Join(info.AllowedMethods(), ", "))
		if a.methodNotAllowedHandler != nil {
			return a.methodNotAllowedHandler(c)
		}
		return ErrMethodNotAllowed(info.AllowedMethods())
	}

	if a.maintenance.Load() && !info.WorksOffline() {
		return ErrServiceUnavailable("Service is under maintenance")
	}

	ref, _ := info.Handler()
	h, ok := a.registry.Lookup(ref.Class)
	if !ok {
		return ErrInternal("", WithError(fmt.Errorf("%w: %s", ErrUnknownHandler, ref.Class)))
	}
	if ref.Method == DefaultMethod {
		return h.Handle(c)
	}
	ah, ok := h.(ActionHandler)
	if !ok {
		return ErrInternal("", WithError(fmt.Errorf("%w: %s", ErrUnknownHandler, ref)))
	}
	return ah.Action(ref.Method, c)
}

func (a *App) notFound(c Context) error {
	if a.notFoundHandler != nil {
		return a.notFoundHandler(c)
	}
	return ErrNotFound("")
}

// handleError handles errors from handlers using the configured error handler.
func (a *App) handleError(c Context, err error) {
	// Check if response has already been written
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		_ = a.errorHandler(c, err)
		return
	}

	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal("", WithError(err))
	}
	if httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err), slog.Int("status", httpErr.Code))
	}
	http.Error(c.Response(), httpErr.Message, httpErr.Code)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	cmsroute.WithReadinessCheck("rewrites", rewrite.Healthcheck(store))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
