package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/cmsroute/pkg/website"
)

// Context provides request data and response helpers to handlers and
// middleware. Requests are resolved before middleware runs, so route data
// is available to both.
type Context interface {
	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the wrapping writer with status tracking.
	ResponseWriter() *ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns a path variable extracted by the matched route.
	Param(name string) string

	// Params returns a copy of all path variables.
	Params() map[string]string

	// Query returns a query parameter by name.
	Query(name string) string

	// QueryDefault returns a query parameter or a default value.
	QueryDefault(name, defaultValue string) string

	// RouteInfo returns the resolution result for the request.
	RouteInfo() RouteInfo

	// Router returns the router that resolved the request, or nil.
	Router() *Router

	// URLFor builds the URL of a named route of the resolving router.
	URLFor(name string, params map[string]string) string

	// Domain returns the normalized request host.
	Domain() string

	// WebsiteID returns the id of the website serving the request.
	WebsiteID() int64

	// Header returns a request header value.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes v as JSON with the given status code.
	JSON(code int, v any) error

	// String writes s as plain text with the given status code.
	String(code int, s string) error

	// NoContent writes only the status code.
	NoContent(code int) error

	// Redirect sends a redirect response.
	Redirect(code int, url string) error

	// Error creates an HTTPError for the error handler to render.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether the response has been started.
	Written() bool

	// Logger returns the request logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any
}

// routeInfoKey is the context key of the resolved RouteInfo.
type routeInfoKey struct{}

// RouteInfoFromContext returns the RouteInfo stored for the request.
func RouteInfoFromContext(ctx context.Context) (RouteInfo, bool) {
	ri, ok := ctx.Value(routeInfoKey{}).(RouteInfo)
	return ri, ok
}

type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	websites       WebsiteResolver
	router         *Router
	fallback       *Router
	info           RouteInfo
}

// newContext creates a new context with the response wrapper.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw := NewResponseWriter(w)

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		websites:       app.websites,
		fallback:       app.web,
	}
}

// setRoute records the resolution result on the context and in the
// request context.
func (c *requestContext) setRoute(rt *Router, info RouteInfo) {
	c.router = rt
	c.info = info
	c.Set(routeInfoKey{}, info)
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Param(name string) string {
	return c.info.Var(name)
}

func (c *requestContext) Params() map[string]string {
	if vars := c.info.Vars(); vars != nil {
		return vars
	}
	return map[string]string{}
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) RouteInfo() RouteInfo {
	return c.info
}

func (c *requestContext) Router() *Router {
	return c.router
}

// URLFor prefers the resolving router and falls back to the web router.
func (c *requestContext) URLFor(name string, params map[string]string) string {
	rt := c.router
	if rt == nil {
		rt = c.fallback
	}
	if rt == nil {
		return BaseURLFromContext(c.Context())
	}
	return rt.URLFor(c.Context(), name, params)
}

func (c *requestContext) Domain() string {
	return website.Domain(c.request)
}

func (c *requestContext) WebsiteID() int64 {
	if id, ok := website.FromContext(c.Context()); ok {
		return id
	}
	if c.websites != nil {
		return c.websites.ID(c.Domain())
	}
	return 0
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}
