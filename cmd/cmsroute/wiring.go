package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/cmsroute"
	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/config"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
	"github.com/dmitrymomot/cmsroute/pkg/redis"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
	"github.com/dmitrymomot/cmsroute/pkg/website"
)

// cacheKeyPrefix namespaces cmsroute keys in a shared Redis.
const cacheKeyPrefix = "cmsroute:"

// deps holds everything a command needs. close releases it in reverse
// order of acquisition.
type deps struct {
	cfg     config.Config
	log     *slog.Logger
	tables  cache.Cache[[]byte]
	store   rewrite.Store
	sites   *website.Resolver
	reg     *cmsroute.Registry
	routers []*cmsroute.Router
	metrics *prometheus.Registry

	checks  map[string]func(context.Context) error
	closers []func(context.Context) error
}

// setup loads the configuration and connects the cache and rewrite store.
func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	d := &deps{
		cfg:     cfg,
		log:     logger.New(cfg.Logger, cmsroute.RouteExtractor()),
		sites:   cfg.Websites(),
		metrics: prometheus.NewRegistry(),
		checks:  make(map[string]func(context.Context) error),
	}

	if cfg.Redis.URL != "" {
		client, err := redis.OpenConfig(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, redis.Shutdown(client))
		d.checks["redis"] = redis.Healthcheck(client)
		d.tables = cache.NewRedis[[]byte](client, cache.Raw{}, cache.WithPrefix(cacheKeyPrefix))
	} else {
		d.tables = cache.NewMemory[[]byte](cache.WithMaxEntries(cfg.CacheMaxEntries))
		d.closers = append(d.closers, func(context.Context) error { return d.tables.Close() })
	}

	store, err := rewrite.Open(ctx, cfg.Rewrite, d.log)
	if err != nil {
		_ = d.close(ctx)
		return nil, err
	}
	d.store = store
	d.closers = append(d.closers, func(context.Context) error { return store.Close() })
	d.checks["rewrites"] = rewrite.Healthcheck(store)

	d.reg = registry(store)
	d.routers = d.newRouters()
	return d, nil
}

func (d *deps) newRouters() []*cmsroute.Router {
	common := []cmsroute.RouterOption{
		cmsroute.WithCache(d.tables),
		cmsroute.WithRouterLogger(d.log),
		cmsroute.WithMetrics(cmsroute.NewMetrics(cmsroute.WithMetricsRegistry(d.metrics))),
		cmsroute.WithWebsites(d.sites),
		cmsroute.WithStrictNames(d.cfg.StrictRouteNames),
	}
	if d.cfg.CacheTTL > 0 {
		common = append(common, cmsroute.WithCacheTTL(d.cfg.CacheTTL))
	}
	if d.cfg.BaseURL != "" {
		common = append(common, cmsroute.WithBaseURL(d.cfg.BaseURL))
	}

	web := append([]cmsroute.RouterOption{cmsroute.WithRewriteStore(d.store)}, common...)
	return []*cmsroute.Router{
		cmsroute.NewWebRouter(d.reg, web...),
		cmsroute.NewCrudRouter(d.reg, common...),
		cmsroute.NewGraphQLRouter(d.reg, common...),
		cmsroute.NewWebhooksRouter(d.reg, common...),
	}
}

// router returns the router with the given name.
func (d *deps) router(name string) (*cmsroute.Router, error) {
	for _, rt := range d.routers {
		if strings.EqualFold(rt.Name(), name) {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("unknown router %q", name)
}

// selected returns the named router, or all of them for "all".
func (d *deps) selected(name string) ([]*cmsroute.Router, error) {
	if name == "" || strings.EqualFold(name, "all") {
		return d.routers, nil
	}
	rt, err := d.router(name)
	if err != nil {
		return nil, err
	}
	return []*cmsroute.Router{rt}, nil
}

// routerFor picks the router whose mount claims path. The web router
// serves everything else.
func (d *deps) routerFor(path string) *cmsroute.Router {
	for _, rt := range d.routers[1:] {
		mount := strings.TrimRight(rt.Mount(), "/")
		if path == mount || strings.HasPrefix(path, mount+"/") {
			return rt
		}
	}
	return d.routers[0]
}

func (d *deps) close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i](ctx))
	}
	d.closers = nil
	return errors.Join(errs...)
}

// withDeps runs fn with connected dependencies and releases them afterwards.
func withDeps(ctx context.Context, fn func(*deps) error) error {
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	return errors.Join(fn(d), d.close(ctx))
}
