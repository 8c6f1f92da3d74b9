package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
	"github.com/dmitrymomot/cmsroute/pkg/pattern"
	"github.com/dmitrymomot/cmsroute/pkg/website"
)

const tracerName = "github.com/dmitrymomot/cmsroute"

// Router maps requests to handler classes. It builds its route table
// lazily from the registry (or the cache), matches request paths in
// registration order, falls back to persisted rewrites and index paths,
// and builds URLs from route names.
//
// A Router is safe for concurrent use.
type Router struct {
	registry *Registry
	opts     *routerOptions
	logger   *slog.Logger
	tracer   trace.Tracer
	state    atomic.Pointer[routeState]
	builds   singleflight.Group
	kind     kind
	extras   []RouteEntry
	mu       sync.Mutex // guards extras
	snapMu   sync.Mutex // serializes rewrite snapshot writes
}

// routeState is a compiled table. It is replaced, never mutated.
type routeState struct {
	scanned    Table
	table      Table
	entries    []RouteEntry
	patterns   []*pattern.Pattern
	dispatcher *pattern.Dispatcher[int]
	byName     map[string]int
	byClass    map[string][]int
}

// NewWebRouter creates the router for page handlers registered under web/.
// It is the only router that resolves persisted rewrites.
func NewWebRouter(reg *Registry, opts ...RouterOption) *Router {
	return newRouter(webKind(), reg, opts...)
}

// NewCrudRouter creates the router for CrudHandlers registered under crud/.
func NewCrudRouter(reg *Registry, opts ...RouterOption) *Router {
	return newRouter(crudKind(), reg, opts...)
}

// NewGraphQLRouter creates the router for handlers registered under graphql/.
func NewGraphQLRouter(reg *Registry, opts ...RouterOption) *Router {
	return newRouter(graphqlKind(), reg, opts...)
}

// NewWebhooksRouter creates the router for handlers registered under webhooks/.
func NewWebhooksRouter(reg *Registry, opts ...RouterOption) *Router {
	return newRouter(webhooksKind(), reg, opts...)
}

func newRouter(k kind, reg *Registry, opts ...RouterOption) *Router {
	o := defaultRouterOptions()
	for _, opt := range opts {
		opt(o)
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if o.cache == nil {
		o.cache = cache.NewMemory[[]byte](cache.WithCleanupInterval(0))
	}
	if o.logger == nil {
		o.logger = logger.NewNope()
	}
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Router{
		kind:     k,
		registry: reg,
		opts:     o,
		logger:   o.logger.With(slog.String("router", k.name)),
		tracer:   tp.Tracer(tracerName),
	}
}

// Name returns the router name used in cache keys.
func (r *Router) Name() string { return r.kind.name }

// Type returns the tag set on every RouteInfo the router produces.
func (r *Router) Type() string { return r.kind.typ }

// Namespace returns the registry namespace scanned for handlers.
func (r *Router) Namespace() string { return r.kind.namespace }

// Mount returns the path prefix the router serves.
func (r *Router) Mount() string { return r.kind.mount }

// Build loads the route table now instead of on the first request.
func (r *Router) Build(ctx context.Context) error {
	_, err := r.load(ctx)
	return err
}

// Routes returns the route table, scanned entries first, then routes
// added with AddRoute.
func (r *Router) Routes(ctx context.Context) (Table, error) {
	st, err := r.load(ctx)
	if err != nil {
		return Table{}, err
	}
	return st.table.clone(), nil
}

// AddRoute appends a route to group. Added routes are local to the
// process: they are not written to the cache and survive Invalidate.
// An empty method defaults to DefaultMethod and empty verbs to the
// router's defaults. Call it during setup, before the router serves
// requests.
func (r *Router) AddRoute(group, name, path, class, method string, verbs []string) error {
	if method == "" {
		method = DefaultMethod
	}
	if len(verbs) == 0 {
		verbs = r.kind.verbs
	}
	e := RouteEntry{
		Group:   group,
		Name:    name,
		Path:    path,
		Handler: HandlerRef{Class: class, Method: method},
		Verbs:   verbs,
	}
	if err := validateClass(class); err != nil {
		return err
	}
	normalized, err := validateEntry(e)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.extras = append(r.extras, normalized)
	st := r.state.Load()
	if st == nil {
		return nil
	}
	next, err := r.compile(st.scanned, r.extras)
	if err != nil {
		r.extras = r.extras[:len(r.extras)-1]
		return err
	}
	r.state.Store(next)
	return nil
}

// Invalidate drops the compiled table and deletes the router's cache keys.
// The next call rebuilds from the registry.
func (r *Router) Invalidate(ctx context.Context) error {
	r.state.Store(nil)
	var errs []error
	for _, category := range []cache.Category{cache.CategoryControllers, cache.CategoryRoutes} {
		if err := r.opts.cache.Delete(ctx, r.cacheKey(category)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "route cache invalidated")
	return nil
}

// ResolveRequest resolves r using its method, request URI and host.
func (r *Router) ResolveRequest(req *http.Request) (RouteInfo, error) {
	return r.Resolve(req.Context(), req.Method, req.URL.RequestURI(), website.Domain(req))
}

// Resolve maps a request to a RouteInfo. Not found and method not allowed
// are statuses, not errors: the error is non-nil only when the route table
// cannot be built.
//
// Resolution order: the table, then a rewrite record for the path (web
// router only), then path+"index" for paths ending in a slash.
func (r *Router) Resolve(ctx context.Context, method, uri, domain string) (RouteInfo, error) {
	start := time.Now()
	if method == "" {
		method = http.MethodGet
	}
	if uri == "" {
		uri = "/"
	}
	method = strings.ToUpper(method)
	domain = website.NormalizeHost(domain)

	ctx, span := r.tracer.Start(ctx, "cmsroute.resolve",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cmsroute.router", r.kind.name),
			attribute.String("http.request.method", method),
			attribute.String("url.path", uri),
		),
	)
	defer span.End()

	st, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route table build failed")
		return RouteInfo{}, err
	}

	info := r.resolve(ctx, st, method, uri, domain)

	span.SetAttributes(attribute.String("cmsroute.status", info.status.String()))
	if info.name != "" {
		span.SetAttributes(attribute.String("cmsroute.route_name", info.name))
	}
	r.opts.metrics.observeResolve(r.kind.name, info.status, time.Since(start))

	return info, nil
}

func (r *Router) resolve(ctx context.Context, st *routeState, method, uri, domain string) RouteInfo {
	path := requestPath(uri)
	route := path
	res := st.dispatcher.Match(method, path)

	var rewriteID *int64
	if res.Status == pattern.NotFound {
		if rec, ok := r.lookupRewrite(ctx, path, domain); ok {
			id := rec.ID
			rewriteID = &id
			route = requestPath(rec.Route)
			res = st.dispatcher.Match(method, route)
		}
	}
	if res.Status == pattern.NotFound && strings.HasSuffix(path, "/") {
		rewriteID = nil
		route = path + "index"
		res = st.dispatcher.Match(method, route)
	}

	info := RouteInfo{
		status:     res.Status,
		uri:        uri,
		method:     method,
		route:      route,
		routerType: r.kind.typ,
	}
	switch res.Status {
	case pattern.Found:
		e := st.entries[res.Target]
		ref := e.Handler
		info.handler = &ref
		info.vars = res.Vars
		info.rewriteID = rewriteID
		info.name = st.routeName(res.Target, method, path, r.opts.strict)
	case pattern.MethodNotAllowed:
		info.allowed = res.Allowed
	default:
		info.route = path
	}
	return info
}

// URLFor builds the URL of the named route. Unknown names yield the base
// URL and a logged warning.
func (r *Router) URLFor(ctx context.Context, name string, params map[string]string) string {
	u, err := r.LookupURL(ctx, name, params)
	if err != nil {
		if errors.Is(err, ErrRouteNotFound) {
			r.logger.WarnContext(ctx, "unknown route name, falling back to base url", slog.String("name", name))
		} else {
			r.logger.ErrorContext(ctx, "url lookup failed", slog.String("name", name), slog.Any("error", err))
		}
		return r.baseURL(ctx)
	}
	return u
}

// LookupURL is like URLFor but reports unknown names with ErrRouteNotFound.
// Parameter values are substituted as given and not checked against the
// placeholder constraints; placeholders without a value stay in place.
func (r *Router) LookupURL(ctx context.Context, name string, params map[string]string) (string, error) {
	st, err := r.load(ctx)
	if err != nil {
		return "", err
	}
	idx, ok := st.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return r.baseURL(ctx) + st.patterns[idx].Build(params), nil
}

func (r *Router) baseURL(ctx context.Context) string {
	if r.opts.baseURL != "" {
		return r.opts.baseURL
	}
	return BaseURLFromContext(ctx)
}

func (r *Router) cacheKey(category cache.Category) string {
	return cache.Key(r.kind.name, category)
}

// load returns the compiled table, building it once per process.
// Concurrent callers share one build.
func (r *Router) load(ctx context.Context) (*routeState, error) {
	if st := r.state.Load(); st != nil {
		return st, nil
	}
	v, err, _ := r.builds.Do("build", func() (any, error) {
		if st := r.state.Load(); st != nil {
			return st, nil
		}
		st, err := r.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		r.state.Store(st)
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*routeState), nil
}

// build loads the table from the cache, or scans the registry and caches
// the result. A failed scan caches nothing.
func (r *Router) build(ctx context.Context) (*routeState, error) {
	key := r.cacheKey(cache.CategoryControllers)

	if t, ok := r.cachedTable(ctx, key); ok {
		st, err := r.compile(t, r.addedRoutes())
		if err == nil {
			r.opts.metrics.observeBuild(r.kind.name, "cache")
			r.logger.DebugContext(ctx, "route table loaded from cache", slog.Int("entries", t.Len()))
			return st, nil
		}
		r.logger.WarnContext(ctx, "cached route table rejected, rescanning", slog.Any("error", err))
	}

	t, err := r.scan()
	var st *routeState
	if err == nil {
		st, err = r.compile(t, r.addedRoutes())
	}
	if err != nil {
		r.opts.metrics.observeBuild(r.kind.name, "error")
		r.logger.ErrorContext(ctx, "route table build failed", slog.Any("error", err))
		return nil, err
	}

	if data, err := encodeTable(t); err != nil {
		r.logger.WarnContext(ctx, "route table encode failed", slog.Any("error", err))
	} else if err := r.opts.cache.Set(ctx, key, data, r.opts.cacheTTL); err != nil {
		r.logger.WarnContext(ctx, "route table cache write failed", slog.Any("error", err))
	}

	r.opts.metrics.observeBuild(r.kind.name, "scan")
	r.logger.DebugContext(ctx, "route table built", slog.Int("entries", t.Len()))
	return st, nil
}

// cachedTable returns the cached table when present and non-empty.
// Cached tables are trusted as-is.
func (r *Router) cachedTable(ctx context.Context, key string) (Table, bool) {
	data, err := r.opts.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			r.logger.WarnContext(ctx, "route cache read failed", slog.Any("error", err))
		}
		return Table{}, false
	}
	if len(data) == 0 {
		return Table{}, false
	}
	t, err := decodeTable(data)
	if err != nil {
		r.logger.WarnContext(ctx, "route cache entry ignored", slog.Any("error", err))
		return Table{}, false
	}
	return t, t.Len() > 0
}

// scan derives the route table from the handlers registered under the
// router namespace.
func (r *Router) scan() (Table, error) {
	var t Table
	for _, class := range r.registry.List(r.kind.namespace, true) {
		h, ok := r.registry.Lookup(class)
		if !ok || isAbstract(h) || !r.kind.accepts(h) {
			continue
		}

		d := r.derive(strings.TrimPrefix(class, r.kind.namespace+"/"))

		name := d.name
		if np, ok := h.(NameProvider); ok {
			if n := strings.TrimSpace(np.RouteName()); n != "" {
				name = n
			}
		}
		verbs := r.kind.verbs
		if vp, ok := h.(VerbProvider); ok {
			if vs := vp.RouteVerbs(); len(vs) > 0 {
				verbs = vs
			}
		}
		paths := []string{d.path}
		if pp, ok := h.(PathProvider); ok {
			if ps := pp.RoutePaths(); len(ps) > 0 {
				paths = ps
			}
		}

		for _, p := range paths {
			e, err := validateEntry(RouteEntry{
				Group:   d.group,
				Name:    name,
				Path:    p,
				Handler: HandlerRef{Class: class, Method: DefaultMethod},
				Verbs:   verbs,
			})
			if err != nil {
				return Table{}, fmt.Errorf("%s: %w", class, err)
			}
			t.Add(e)
		}
	}
	return t, nil
}

// compile merges the scanned table with added routes and builds the matcher.
func (r *Router) compile(scanned Table, added []RouteEntry) (*routeState, error) {
	t := scanned.clone()
	for _, e := range added {
		t.Add(e)
	}

	entries := t.Entries()
	st := &routeState{
		scanned:    scanned,
		table:      t,
		entries:    entries,
		patterns:   make([]*pattern.Pattern, len(entries)),
		dispatcher: pattern.NewDispatcher[int](),
		byName:     make(map[string]int),
		byClass:    make(map[string][]int),
	}

	owners := make(map[string]string)
	for i, e := range entries {
		if err := st.dispatcher.Add(e.Group, e.Path, e.Verbs, i); err != nil {
			return nil, invalidValue("path", e.Pattern(), err.Error(), err)
		}
		if e.Name != "" {
			if owner, ok := owners[e.Name]; ok && owner != e.Handler.Class && r.opts.strict {
				return nil, invalidValue("name", e.Name,
					fmt.Sprintf("used by both %s and %s", owner, e.Handler.Class), nil)
			}
			if _, ok := st.byName[e.Name]; !ok {
				st.byName[e.Name] = i
				owners[e.Name] = e.Handler.Class
			}
		}
		st.byClass[e.Handler.Class] = append(st.byClass[e.Handler.Class], i)
	}
	st.dispatcher.Walk(func(p *pattern.Pattern, _ []string, i int) bool {
		st.patterns[i] = p
		return true
	})
	return st, nil
}

func (r *Router) addedRoutes() []RouteEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.extras)
}

// routeName recovers the symbolic name for a matched entry. Entries of
// the same handler class are filtered by method, then the first whose
// loose pattern matches the request path wins, else the first candidate.
// Strict routers and unnamed entries use the matched entry.
func (st *routeState) routeName(idx int, method, path string, strict bool) string {
	matched := st.entries[idx]
	if strict || matched.Name == "" {
		return matched.Name
	}

	all := st.byClass[matched.Handler.Class]
	candidates := make([]int, 0, len(all))
	for _, i := range all {
		if acceptsMethod(st.entries[i].Verbs, method) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		candidates = all
	}
	for _, i := range candidates {
		if st.patterns[i].Heuristic().MatchString(path) {
			return st.entries[i].Name
		}
	}
	return st.entries[candidates[0]].Name
}

func acceptsMethod(verbs []string, method string) bool {
	return slices.Contains(verbs, method) ||
		(method == http.MethodHead && slices.Contains(verbs, http.MethodGet))
}

// validateEntry checks an entry's pattern and verbs and returns it with
// normalized verbs.
func validateEntry(e RouteEntry) (RouteEntry, error) {
	full := e.Pattern()
	if !strings.HasPrefix(full, "/") {
		return RouteEntry{}, invalidValue("path", full, "pattern must start with /", nil)
	}
	if err := pattern.Validate(full); err != nil {
		return RouteEntry{}, invalidValue("path", full, err.Error(), err)
	}
	verbs, err := normalizeVerbs(e.Verbs)
	if err != nil {
		return RouteEntry{}, err
	}
	e.Verbs = verbs
	return e, nil
}

// requestPath strips the query and fragment, percent-decodes the path and
// normalizes it to NFC. A path that fails to decode is matched raw.
func requestPath(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.IsAbs() {
		p = u.EscapedPath()
	}
	p, _, _ = strings.Cut(p, "?")
	p, _, _ = strings.Cut(p, "#")
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	p = norm.NFC.String(p)
	if p == "" {
		return "/"
	}
	return p
}

type baseURLKey struct{}

// WithRequestBaseURL stores the base URL derived from the current request.
func WithRequestBaseURL(ctx context.Context, u string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, strings.TrimRight(u, "/"))
}

// BaseURLFromContext returns the base URL stored by WithRequestBaseURL.
func BaseURLFromContext(ctx context.Context) string {
	u, _ := ctx.Value(baseURLKey{}).(string)
	return u
}

// RequestBaseURL derives scheme://host from a request, honoring
// X-Forwarded-Proto.
func RequestBaseURL(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.ToLower(strings.TrimSpace(scheme))
	}
	return scheme + "://" + req.Host
}
