package pattern

import (
	"net/http"
	"slices"
	"strings"
)

// Status is the outcome of a dispatch.
type Status uint8

const (
	NotFound Status = iota
	Found
	MethodNotAllowed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case MethodNotAllowed:
		return "method_not_allowed"
	default:
		return "not_found"
	}
}

// Result describes the outcome of Dispatcher.Match.
// Target, Vars and Pattern are set only for Found; Allowed only for MethodNotAllowed.
type Result[T any] struct {
	Target  T
	Vars    map[string]string
	Pattern *Pattern
	Allowed []string
	Status  Status
}

type route[T any] struct {
	pattern *Pattern
	target  T
	verbs   []string
}

func (r *route[T]) accepts(method string) bool {
	return slices.Contains(r.verbs, method)
}

type group[T any] struct {
	prefix string
	routes []*route[T]
}

// Dispatcher matches request paths against routes kept in registration order.
// Routes are added during setup; Match is safe for concurrent use once
// registration is complete.
type Dispatcher[T any] struct {
	index  map[string]*group[T]
	groups []*group[T]
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{index: make(map[string]*group[T])}
}

// Add compiles prefix+path and appends it to the prefix's group.
// Verbs are upper-cased. Groups keep the order of their first registration.
func (d *Dispatcher[T]) Add(prefix, path string, verbs []string, target T) error {
	p, err := Parse(prefix + path)
	if err != nil {
		return err
	}

	upper := make([]string, 0, len(verbs))
	for _, v := range verbs {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" && !slices.Contains(upper, v) {
			upper = append(upper, v)
		}
	}

	g, ok := d.index[prefix]
	if !ok {
		g = &group[T]{prefix: literalPrefix(prefix)}
		d.index[prefix] = g
		d.groups = append(d.groups, g)
	}
	g.routes = append(g.routes, &route[T]{pattern: p, target: target, verbs: upper})

	return nil
}

// Len returns the number of registered routes.
func (d *Dispatcher[T]) Len() int {
	n := 0
	for _, g := range d.groups {
		n += len(g.routes)
	}
	return n
}

// Match resolves method and path. The first route, in registration order,
// whose pattern matches path and whose verbs include method wins. When the
// path matches only routes with other verbs the result is MethodNotAllowed
// with the union of their verbs.
func (d *Dispatcher[T]) Match(method, path string) Result[T] {
	method = strings.ToUpper(method)

	var (
		allowed  []string
		fallback *route[T]
		fbVars   map[string]string
	)

	for _, g := range d.groups {
		if !strings.HasPrefix(path, g.prefix) {
			continue
		}
		for _, r := range g.routes {
			vars, ok := r.pattern.Match(path)
			if !ok {
				continue
			}
			if r.accepts(method) {
				return Result[T]{Status: Found, Target: r.target, Vars: vars, Pattern: r.pattern}
			}
			if method == http.MethodHead && fallback == nil && r.accepts(http.MethodGet) {
				fallback, fbVars = r, vars
			}
			for _, v := range r.verbs {
				if !slices.Contains(allowed, v) {
					allowed = append(allowed, v)
				}
			}
		}
	}

	if fallback != nil {
		return Result[T]{Status: Found, Target: fallback.target, Vars: fbVars, Pattern: fallback.pattern}
	}
	if len(allowed) > 0 {
		SortVerbs(allowed)
		return Result[T]{Status: MethodNotAllowed, Allowed: allowed}
	}
	return Result[T]{Status: NotFound}
}

// Walk calls fn for every route in dispatch order until fn returns false.
func (d *Dispatcher[T]) Walk(fn func(p *Pattern, verbs []string, target T) bool) {
	for _, g := range d.groups {
		for _, r := range g.routes {
			if !fn(r.pattern, slices.Clone(r.verbs), r.target) {
				return
			}
		}
	}
}

var verbOrder = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// SortVerbs orders HTTP verbs canonically (GET, HEAD, POST, PUT, PATCH,
// DELETE, OPTIONS), with unknown verbs last in lexical order.
func SortVerbs(verbs []string) {
	slices.SortStableFunc(verbs, func(a, b string) int {
		ia, ib := slices.Index(verbOrder, a), slices.Index(verbOrder, b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}

// literalPrefix returns the leading literal part of a group prefix, used to
// skip groups that cannot match.
func literalPrefix(prefix string) string {
	if i := strings.IndexAny(prefix, "{["); i >= 0 {
		return prefix[:i]
	}
	return prefix
}
