package internal

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/cmsroute/pkg/pattern"
)

// Status is the outcome of a resolution.
type Status = pattern.Status

const (
	StatusNotFound         = pattern.NotFound
	StatusFound            = pattern.Found
	StatusMethodNotAllowed = pattern.MethodNotAllowed
)

// RouteInfo is the immutable result of resolving one request. Exactly one
// of handler+vars (found), allowed methods (method not allowed) or nothing
// (not found) is populated.
type RouteInfo struct {
	handler    *HandlerRef
	vars       map[string]string
	allowed    []string
	rewriteID  *int64
	uri        string
	method     string
	route      string
	name       string
	routerType string
	status     Status
}

// Status returns the resolution outcome.
func (ri RouteInfo) Status() Status { return ri.status }

// Found reports whether a route matched.
func (ri RouteInfo) Found() bool { return ri.status == StatusFound }

// Handler returns the matched handler reference.
func (ri RouteInfo) Handler() (HandlerRef, bool) {
	if ri.handler == nil {
		return HandlerRef{}, false
	}
	return *ri.handler, true
}

// Vars returns a copy of the extracted path variables, or nil unless found.
func (ri RouteInfo) Vars() map[string]string {
	if ri.vars == nil {
		return nil
	}
	return maps.Clone(ri.vars)
}

// Var returns a single path variable.
func (ri RouteInfo) Var(name string) string {
	return ri.vars[name]
}

// AllowedMethods returns the verbs accepted by the matched path, or nil
// unless the method was not allowed.
func (ri RouteInfo) AllowedMethods() []string {
	return slices.Clone(ri.allowed)
}

// URI returns the request URI as given to Resolve.
func (ri RouteInfo) URI() string { return ri.uri }

// Method returns the request method.
func (ri RouteInfo) Method() string { return ri.method }

// Route returns the path that was finally matched: the request path, the
// route of a rewrite record, or the index fallback path.
func (ri RouteInfo) Route() string { return ri.route }

// RouteName returns the symbolic name of the matched route, or "".
func (ri RouteInfo) RouteName() string { return ri.name }

// RewriteID returns the id of the rewrite record the request went through.
func (ri RouteInfo) RewriteID() (int64, bool) {
	if ri.rewriteID == nil {
		return 0, false
	}
	return *ri.rewriteID, true
}

// Type returns the tag of the router that produced the result.
func (ri RouteInfo) Type() string { return ri.routerType }

// WithType returns a copy tagged with the given router type.
func (ri RouteInfo) WithType(t string) RouteInfo {
	ri.routerType = t
	return ri
}

// IsAdminRoute reports whether the route belongs to the admin area.
func (ri RouteInfo) IsAdminRoute() bool {
	return ri.name == "admin.login" || strings.HasPrefix(ri.name, "admin")
}

// WorksOffline reports whether the route stays reachable in maintenance
// mode. Only admin routes do.
func (ri RouteInfo) WorksOffline() bool {
	return ri.IsAdminRoute()
}

// LogValue implements slog.LogValuer.
func (ri RouteInfo) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("status", ri.status.String()),
		slog.String("method", ri.method),
		slog.String("uri", ri.uri),
		slog.String("route", ri.route),
		slog.String("type", ri.routerType),
	}
	if ri.name != "" {
		attrs = append(attrs, slog.String("name", ri.name))
	}
	if ri.handler != nil {
		attrs = append(attrs, slog.String("handler", ri.handler.String()))
	}
	if ri.rewriteID != nil {
		attrs = append(attrs, slog.Int64("rewrite_id", *ri.rewriteID))
	}
	if len(ri.allowed) > 0 {
		attrs = append(attrs, slog.String("allowed", strings.Join(ri.allowed, ",")))
	}
	return slog.GroupValue(attrs...)
}

type routeInfoJSON struct {
	Handler   *HandlerRef       `json:"handler,omitempty"`
	Vars      map[string]string `json:"vars,omitempty"`
	RewriteID *int64            `json:"rewrite_id,omitempty"`
	Status    string            `json:"status"`
	URI       string            `json:"uri"`
	Method    string            `json:"method"`
	Route     string            `json:"route"`
	Name      string            `json:"name,omitempty"`
	Type      string            `json:"type"`
	Allowed   []string          `json:"allowed_methods,omitempty"`
}

// MarshalJSON renders the result for CLI output and debugging endpoints.
func (ri RouteInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(routeInfoJSON{
		Status:    ri.status.String(),
		Handler:   ri.handler,
		Vars:      ri.vars,
		Allowed:   ri.allowed,
		URI:       ri.uri,
		Method:    ri.method,
		Route:     ri.route,
		Name:      ri.name,
		RewriteID: ri.rewriteID,
		Type:      ri.routerType,
	})
}
