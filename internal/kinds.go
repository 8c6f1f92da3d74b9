package internal

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// Router type tags carried by RouteInfo.
const (
	TypeWeb     = "web"
	TypeCrud    = "crud"
	TypeGraphQL = "graphql"
	TypeWebhook = "webhook"
)

// Default web areas. Classes under web/frontend are served from the site
// root, classes under web/admin from /admin.
const (
	AreaFrontend = "frontend"
	AreaAdmin    = "admin"
)

// rewriteChecker looks a pretty URL up in the persisted rewrite store.
type rewriteChecker func(ctx context.Context, r *Router, path, domain string) (rewrite.Record, bool, error)

// kind describes one router specialization.
type kind struct {
	name       string
	typ        string
	namespace  string
	namePrefix string // empty for web: the area is the prefix
	mount      string
	verbs      []string
	accepts    func(Handler) bool
	rewrites   rewriteChecker
}

func webKind() kind {
	return kind{
		name:      "web",
		typ:       TypeWeb,
		namespace: "web",
		mount:     "/",
		verbs:     []string{http.MethodGet, http.MethodPost},
		accepts:   func(Handler) bool { return true },
		rewrites:  checkStoreRewrites,
	}
}

func crudKind() kind {
	return kind{
		name:       "crud",
		typ:        TypeCrud,
		namespace:  "crud",
		namePrefix: "crud",
		mount:      "/crud",
		verbs:      AllVerbs(),
		accepts: func(h Handler) bool {
			_, ok := h.(CrudHandler)
			return ok
		},
	}
}

func graphqlKind() kind {
	return kind{
		name:       "graphql",
		typ:        TypeGraphQL,
		namespace:  "graphql",
		namePrefix: "graphql",
		mount:      "/graphql",
		verbs:      []string{http.MethodPost},
		accepts:    func(Handler) bool { return true },
	}
}

func webhooksKind() kind {
	return kind{
		name:       "webhooks",
		typ:        TypeWebhook,
		namespace:  "webhooks",
		namePrefix: "webhook",
		mount:      "/webhooks",
		verbs:      []string{http.MethodPost},
		accepts:    func(Handler) bool { return true },
	}
}

// checkStoreRewrites queries the rewrite store by url and the website
// serving domain.
func checkStoreRewrites(ctx context.Context, r *Router, urlPath, domain string) (rewrite.Record, bool, error) {
	if r.opts.store == nil {
		return rewrite.Record{}, false, nil
	}

	var websiteID int64
	if r.opts.websites != nil {
		websiteID = r.opts.websites.ID(domain)
	}

	rec, err := r.opts.store.Find(ctx, rewrite.Query{URL: urlPath, WebsiteID: websiteID})
	switch {
	case errors.Is(err, rewrite.ErrNotFound):
		return rewrite.Record{}, false, nil
	case err != nil:
		return rewrite.Record{}, false, err
	}
	return rec, true, nil
}

// derived is the routing data derived from a class identifier.
type derived struct {
	group string
	name  string
	path  string
}

// derive maps a class to its group, name and default path. rel is the
// class relative to the router namespace, e.g. "frontend/users/Profile".
func (r *Router) derive(rel string) derived {
	segs := strings.Split(rel, "/")
	base := segs[len(segs)-1]
	dirs := lowerAll(segs[:len(segs)-1])

	var (
		group  string
		prefix string
	)
	if r.kind.namePrefix == "" {
		area := AreaFrontend
		if len(dirs) > 0 {
			area, dirs = dirs[0], dirs[1:]
		}
		prefix = area
		group = r.areaPrefix(area)
	} else {
		prefix = r.kind.namePrefix
		group = strings.TrimSuffix(r.kind.mount, "/")
	}
	if len(dirs) > 0 {
		group += "/" + strings.Join(dirs, "/")
	}

	nameParts := append([]string{prefix}, dirs...)
	nameParts = append(nameParts, strings.ToLower(base))

	return derived{
		group: group,
		name:  strings.Join(nameParts, "."),
		path:  "/" + strings.ToLower(base),
	}
}

func (r *Router) areaPrefix(area string) string {
	if p, ok := r.opts.areas[area]; ok {
		return p
	}
	return path.Clean("/" + area)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
