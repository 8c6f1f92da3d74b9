package internal

import (
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// WebsiteResolver maps a request domain to the id of the website whose
// rewrites apply. *website.Resolver implements it.
type WebsiteResolver interface {
	ID(domain string) int64
}

// RouterOption configures a Router.
type RouterOption func(*routerOptions)

type routerOptions struct {
	cache          cache.Cache[[]byte]
	store          rewrite.Finder
	websites       WebsiteResolver
	logger         *slog.Logger
	metrics        *Metrics
	tracerProvider trace.TracerProvider
	areas          map[string]string
	baseURL        string
	cacheTTL       time.Duration
	strict         bool
}

func defaultRouterOptions() *routerOptions {
	return &routerOptions{
		areas: map[string]string{
			AreaFrontend: "",
			AreaAdmin:    "/admin",
		},
		cacheTTL: -1,
	}
}

// WithCache sets the route cache shared by the routers of all workers,
// typically cache.NewRedis[[]byte](client, cache.Raw{}). Without it each
// router keeps a private in-memory cache.
func WithCache(c cache.Cache[[]byte]) RouterOption {
	return func(o *routerOptions) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithCacheTTL sets the expiration of cached tables and rewrite snapshots.
// Default: never expire; snapshots are replaced by Invalidate.
func WithCacheTTL(d time.Duration) RouterOption {
	return func(o *routerOptions) {
		if d != 0 {
			o.cacheTTL = d
		}
	}
}

// WithRewriteStore sets the store queried for pretty URLs. Only the web
// router consults it.
func WithRewriteStore(s rewrite.Finder) RouterOption {
	return func(o *routerOptions) {
		o.store = s
	}
}

// WithWebsites sets the domain to website id mapping used for rewrite
// lookups. Without it every domain maps to website 0.
func WithWebsites(w WebsiteResolver) RouterOption {
	return func(o *routerOptions) {
		o.websites = w
	}
}

// WithRouterLogger sets the router logger.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(o *routerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics. Share one *Metrics between routers.
func WithMetrics(m *Metrics) RouterOption {
	return func(o *routerOptions) {
		o.metrics = m
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) RouterOption {
	return func(o *routerOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithBaseURL sets the URL prefixed to links built by URLFor. Without it
// the base URL is derived from the current request.
func WithBaseURL(u string) RouterOption {
	return func(o *routerOptions) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

// WithArea maps a web area (the first namespace segment under web/) to
// its path prefix. Defaults: frontend is served from the root and admin
// from /admin; other areas from "/"+area.
func WithArea(area, prefix string) RouterOption {
	return func(o *routerOptions) {
		o.areas[strings.ToLower(area)] = strings.TrimRight(prefix, "/")
	}
}

// WithStrictNames rejects tables in which one route name is used by more
// than one handler class. Strict routers report the name of the matched
// entry directly instead of guessing it from the handler class.
func WithStrictNames(strict bool) RouterOption {
	return func(o *routerOptions) {
		o.strict = strict
	}
}
