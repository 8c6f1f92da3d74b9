package internal

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/cmsroute/pkg/health"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithRegistry sets the registry the App dispatches resolved classes to.
// Pass the same registry to the routers.
func WithRegistry(reg *Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithRouters adds routers. Routers of type web handle every path not
// claimed by another router; the others are mounted at their prefix.
// Only one web router is kept.
//
// Example:
//
//	cmsroute.WithRouters(
//	    cmsroute.NewWebRouter(reg, cmsroute.WithRewriteStore(store)),
//	    cmsroute.NewCrudRouter(reg),
//	    cmsroute.NewWebhooksRouter(reg),
//	)
func WithRouters(routers ...*Router) Option {
	return func(a *App) {
		for _, rt := range routers {
			switch {
			case rt == nil:
			case rt.Type() == TypeWeb:
				a.web = rt
			default:
				a.routers = append(a.routers, rt)
			}
		}
	}
}

// WithWebsiteResolver sets the domain to website id mapping exposed by
// Context.WebsiteID. Pass the same resolver to the web router.
func WithWebsiteResolver(w WebsiteResolver) Option {
	return func(a *App) {
		a.websites = w
	}
}

// WithMaintenance starts the App in maintenance mode.
func WithMaintenance(on bool) Option {
	return func(a *App) {
		a.maintenance.Store(on)
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware runs in the order provided, after the request was resolved,
// so Context.RouteInfo is already set.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	cmsroute.New(
//	    cmsroute.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimRight(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error, including the 404, 405
// and 503 errors produced by resolution.
//
// Example:
//
//	cmsroute.WithErrorHandler(func(c cmsroute.Context, err error) error {
//	    if he := cmsroute.AsHTTPError(err); he != nil {
//	        return c.JSON(he.Code, map[string]string{"error": he.Message})
//	    }
//	    return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal"})
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
//
// Example:
//
//	cmsroute.WithNotFoundHandler(func(c cmsroute.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler. The Allow header
// is already set when it runs.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	cmsroute.WithHealthChecks(
//	    cmsroute.WithReadinessCheck("rewrites", rewrite.Healthcheck(store)),
//	    cmsroute.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, route).
//
// Example:
//
//	cmsroute.New(
//	    cmsroute.WithLogger("cms", cfg.Logger, middlewares.RequestIDExtractor(), cmsroute.RouteExtractor()),
//	)
func WithLogger(component string, cfg logger.Config, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(cfg, extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// RouteExtractor returns a ContextExtractor adding the resolved route to
// log entries written after resolution.
func RouteExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		ri, ok := RouteInfoFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.Attr{Key: "route", Value: ri.LogValue()}, true
	}
}
