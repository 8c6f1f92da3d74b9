package website

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Sites maps host patterns to website ids.
// Exact: "shop.example.com"
// Wildcard: "*.example.com"
type Sites map[string]int64

// Resolver maps request domains to the website whose rewrites apply.
// Exact hosts win over wildcards; unknown hosts get the fallback id.
type Resolver struct {
	exact    map[string]int64
	wildcard map[string]int64 // "*.example.com" stored as "example.com"
	fallback int64
}

// New creates a resolver. fallback is returned for unknown domains,
// usually the default website (0).
func New(sites Sites, fallback int64) *Resolver {
	r := &Resolver{
		exact:    make(map[string]int64),
		wildcard: make(map[string]int64),
		fallback: fallback,
	}
	for pattern, id := range sites {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(pattern, "*."); ok {
			r.wildcard[rest] = id
		} else {
			r.exact[NormalizeHost(pattern)] = id
		}
	}
	return r
}

// Lookup returns the website id for domain and whether a pattern matched.
// Wildcards match one or more subdomain levels, the closest suffix first.
func (r *Resolver) Lookup(domain string) (int64, bool) {
	host := NormalizeHost(domain)
	if id, ok := r.exact[host]; ok {
		return id, true
	}
	for rest := host; ; {
		_, parent, ok := strings.Cut(rest, ".")
		if !ok {
			break
		}
		if id, ok := r.wildcard[parent]; ok {
			return id, true
		}
		rest = parent
	}
	return r.fallback, false
}

// ID returns the website id for domain, or the fallback.
func (r *Resolver) ID(domain string) int64 {
	id, _ := r.Lookup(domain)
	return id
}

// Len returns the number of configured patterns.
func (r *Resolver) Len() int {
	return len(r.exact) + len(r.wildcard)
}

// ParseSites parses "host=id" pairs, e.g. from a SITES environment variable:
//
//	example.com=1,*.example.org=2
func ParseSites(pairs []string) (Sites, error) {
	sites := make(Sites, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		host, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(host) == "" {
			return nil, ErrInvalidSite
		}
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id < 0 {
			return nil, ErrInvalidSite
		}
		sites[strings.TrimSpace(host)] = id
	}
	return sites, nil
}

type ctxKey struct{}

// WithID stores a website id in ctx.
func WithID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the website id stored by Middleware or WithID.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

// Middleware resolves the request's website once and stores its id in the
// request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := r.ID(req.Host)
		next.ServeHTTP(w, req.WithContext(WithID(req.Context(), id)))
	})
}
