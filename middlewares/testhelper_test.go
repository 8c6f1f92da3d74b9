package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/internal"
)

type testContext struct {
	response http.ResponseWriter
	request  *http.Request
	info     internal.RouteInfo
	logs     *bytes.Buffer
	logger   *slog.Logger
}

var _ internal.Context = (*testContext)(nil)

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	buf := &bytes.Buffer{}
	return &testContext{
		response: w,
		request:  r,
		logs:     buf,
		logger:   slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

// withRoute attaches a resolved route to the context.
func (c *testContext) withRoute(info internal.RouteInfo) *testContext {
	c.info = info
	return c
}

func (c *testContext) Request() *http.Request                    { return c.request }
func (c *testContext) Response() http.ResponseWriter             { return c.response }
func (c *testContext) ResponseWriter() *internal.ResponseWriter  { return nil }
func (c *testContext) Context() context.Context                  { return c.request.Context() }
func (c *testContext) Param(name string) string                  { return c.info.Var(name) }
func (c *testContext) Params() map[string]string                 { return c.info.Vars() }
func (c *testContext) RouteInfo() internal.RouteInfo             { return c.info }
func (c *testContext) Router() *internal.Router                  { return nil }
func (c *testContext) URLFor(string, map[string]string) string   { return "" }
func (c *testContext) Domain() string                            { return c.request.Host }
func (c *testContext) WebsiteID() int64                          { return 0 }
func (c *testContext) Header(name string) string                 { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string)              { c.response.Header().Set(name, value) }
func (c *testContext) Written() bool                             { return false }
func (c *testContext) Logger() *slog.Logger                      { return c.logger }
func (c *testContext) LogDebug(msg string, attrs ...any)         { c.logger.Debug(msg, attrs...) }
func (c *testContext) LogInfo(msg string, attrs ...any)          { c.logger.Info(msg, attrs...) }
func (c *testContext) LogWarn(msg string, attrs ...any)          { c.logger.Warn(msg, attrs...) }
func (c *testContext) LogError(msg string, attrs ...any)         { c.logger.Error(msg, attrs...) }
func (c *testContext) Get(key any) any                           { return c.request.Context().Value(key) }
func (c *testContext) NoContent(code int) error                  { c.response.WriteHeader(code); return nil }
func (c *testContext) Redirect(code int, url string) error       { return nil }

func (c *testContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *testContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *testContext) JSON(code int, v any) error {
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) String(code int, s string) error {
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func (c *testContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

// noopHandler satisfies internal.Handler for route resolution.
type noopHandler struct {
	paths []string
}

func (noopHandler) Handle(internal.Context) error { return nil }
func (h noopHandler) RoutePaths() []string       { return h.paths }

// resolveRoute resolves uri against a web router holding one handler class.
func resolveRoute(t *testing.T, class, path, uri string) internal.RouteInfo {
	t.Helper()
	reg := internal.NewRegistry().MustRegister(class, noopHandler{paths: []string{path}})
	info, err := internal.NewWebRouter(reg).Resolve(context.Background(), http.MethodGet, uri, "example.com")
	require.NoError(t, err)
	require.True(t, info.Found())
	return info
}
