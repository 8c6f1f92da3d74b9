package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// rewriteSnapshot indexes cached rewrite records by domain, then url.
type rewriteSnapshot map[string]map[string]rewrite.Record

// lookupRewrite resolves an unmatched path through the cached snapshot,
// then through the router's store check. Store hits are written back to
// the snapshot. Store failures are logged and treated as a miss.
func (r *Router) lookupRewrite(ctx context.Context, path, domain string) (rewrite.Record, bool) {
	key := r.cacheKey(cache.CategoryRoutes)

	if rec, ok := r.loadSnapshot(ctx, key)[domain][path]; ok {
		r.opts.metrics.observeRewrite(r.kind.name, rewriteCacheHit)
		return rec, true
	}
	if r.kind.rewrites == nil {
		return rewrite.Record{}, false
	}

	rec, ok, err := r.kind.rewrites(ctx, r, path, domain)
	if err != nil {
		r.opts.metrics.observeRewrite(r.kind.name, rewriteError)
		r.logger.WarnContext(ctx, "rewrite lookup failed",
			slog.String("path", path),
			slog.String("domain", domain),
			slog.Any("error", err),
		)
		return rewrite.Record{}, false
	}
	if !ok {
		r.opts.metrics.observeRewrite(r.kind.name, rewriteMiss)
		return rewrite.Record{}, false
	}

	r.opts.metrics.observeRewrite(r.kind.name, rewriteStoreHit)
	r.remember(ctx, key, domain, path, rec)
	return rec, true
}

func (r *Router) loadSnapshot(ctx context.Context, key string) rewriteSnapshot {
	data, err := r.opts.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			r.logger.WarnContext(ctx, "rewrite cache read failed", slog.Any("error", err))
		}
		return nil
	}
	var snap rewriteSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.logger.WarnContext(ctx, "rewrite cache entry ignored", slog.Any("error", err))
		return nil
	}
	return snap
}

// remember adds rec to the cached snapshot. Workers racing on the same
// key may overwrite each other's additions; the lost record is fetched
// from the store again on its next request.
func (r *Router) remember(ctx context.Context, key, domain, path string, rec rewrite.Record) {
	r.snapMu.Lock()
	defer r.snapMu.Unlock()

	snap := r.loadSnapshot(ctx, key)
	if snap == nil {
		snap = make(rewriteSnapshot)
	}
	if snap[domain] == nil {
		snap[domain] = make(map[string]rewrite.Record)
	}
	snap[domain][path] = rec

	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.WarnContext(ctx, "rewrite snapshot encode failed", slog.Any("error", err))
		return
	}
	if err := r.opts.cache.Set(ctx, key, data, r.opts.cacheTTL); err != nil {
		r.logger.WarnContext(ctx, "rewrite cache write failed", slog.Any("error", err))
	}
}
