package internal_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/internal"
	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
	"github.com/dmitrymomot/cmsroute/pkg/website"
)

// exportHandler serves its default route and an "Export" action.
type exportHandler struct{}

func (exportHandler) Handle(c internal.Context) error {
	return c.String(http.StatusOK, "list")
}

func (exportHandler) Action(method string, c internal.Context) error {
	return c.String(http.StatusOK, strings.ToLower(method)+":"+c.Param("format"))
}

func newTestApp(t *testing.T, opts ...internal.Option) *internal.App {
	t.Helper()

	reg := internal.NewRegistry().
		MustRegister("web/frontend/Root", &stubHandler{paths: []string{"/"}, body: "home"}).
		MustRegister("web/frontend/users/Profile", &stubHandler{verbs: []string{http.MethodGet}, body: "profile"}).
		MustRegister("web/admin/Login", &stubHandler{body: "login"}).
		MustRegister("web/frontend/Reports", exportHandler{}).
		MustRegister("crud/Posts", &crudStub{model: "post", stubHandler: stubHandler{body: "posts"}}).
		MustRegister("webhooks/Stripe", &stubHandler{body: "stripe"})

	web := internal.NewWebRouter(reg)
	require.NoError(t, web.AddRoute("/reports", "frontend.reports.export", "/export.{format:csv|json}",
		"web/frontend/Reports", "Export", []string{http.MethodGet}))

	opts = append([]internal.Option{
		internal.WithRegistry(reg),
		internal.WithRouters(web, internal.NewCrudRouter(reg), internal.NewWebhooksRouter(reg)),
	}, opts...)
	return internal.New(opts...)
}

func serve(app http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		target string
		code   int
		body   string
	}{
		{name: "root", method: http.MethodGet, target: "/", code: http.StatusOK, body: "home"},
		{name: "nested page", method: http.MethodGet, target: "/users/profile", code: http.StatusOK, body: "profile"},
		{name: "admin page", method: http.MethodPost, target: "/admin/login", code: http.StatusOK, body: "login"},
		{name: "action method", method: http.MethodGet, target: "/reports/export.csv", code: http.StatusOK, body: "export:csv"},
		{name: "crud mount", method: http.MethodPatch, target: "/crud/posts", code: http.StatusOK, body: "posts"},
		{name: "webhook mount", method: http.MethodPost, target: "/webhooks/stripe", code: http.StatusOK, body: "stripe"},
		{name: "unknown page", method: http.MethodGet, target: "/missing", code: http.StatusNotFound},
		{name: "unknown crud path", method: http.MethodGet, target: "/crud/comments", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(app, tt.method, tt.target)
			require.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestApp_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		w := serve(newTestApp(t), http.MethodDelete, "/users/profile")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		require.Equal(t, "GET", w.Header().Get("Allow"))
	})

	t.Run("webhook router", func(t *testing.T) {
		t.Parallel()

		w := serve(newTestApp(t), http.MethodGet, "/webhooks/stripe")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		require.Equal(t, "POST", w.Header().Get("Allow"))
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.JSON(http.StatusMethodNotAllowed, map[string]any{"allowed": c.RouteInfo().AllowedMethods()})
		}))
		w := serve(app, http.MethodPut, "/users/profile")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		require.Equal(t, "GET", w.Header().Get("Allow"))
		require.JSONEq(t, `{"allowed":["GET"]}`, w.Body.String())
	})
}

func TestApp_NotFoundHandler(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, internal.WithNotFoundHandler(func(c internal.Context) error {
		return c.String(http.StatusNotFound, "no page at "+c.RouteInfo().Route())
	}))

	w := serve(app, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "no page at /nope", w.Body.String())
}

func TestApp_NoWebRouter(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry().MustRegister("webhooks/Stripe", &stubHandler{body: "stripe"})
	app := internal.New(internal.WithRegistry(reg), internal.WithRouters(internal.NewWebhooksRouter(reg)))

	require.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/").Code)
	require.Equal(t, http.StatusOK, serve(app, http.MethodPost, "/webhooks/stripe").Code)
	require.Len(t, app.Routers(), 1)
}

func TestApp_Maintenance(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, internal.WithMaintenance(true))
	require.True(t, app.Maintenance())

	w := serve(app, http.MethodGet, "/users/profile")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(app, http.MethodGet, "/admin/login")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "login", w.Body.String())

	// Unknown paths still report 404.
	require.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/missing").Code)

	app.SetMaintenance(false)
	require.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/users/profile").Code)
}

func TestApp_ErrorHandling(t *testing.T) {
	t.Parallel()

	failing := internal.HandlerFunc(func(c internal.Context) error {
		switch c.Query("mode") {
		case "http":
			return c.Error(http.StatusConflict, "already exists")
		default:
			return errors.New("boom")
		}
	})
	newApp := func(opts ...internal.Option) *internal.App {
		reg := internal.NewRegistry().MustRegister("web/frontend/Fail", failing)
		return internal.New(append([]internal.Option{
			internal.WithRegistry(reg),
			internal.WithRouters(internal.NewWebRouter(reg)),
		}, opts...)...)
	}

	t.Run("http error", func(t *testing.T) {
		t.Parallel()

		w := serve(newApp(), http.MethodGet, "/fail?mode=http")
		require.Equal(t, http.StatusConflict, w.Code)
		require.Contains(t, w.Body.String(), "already exists")
	})

	t.Run("plain error is internal", func(t *testing.T) {
		t.Parallel()

		w := serve(newApp(), http.MethodGet, "/fail")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		app := newApp(internal.WithErrorHandler(func(c internal.Context, err error) error {
			code := http.StatusInternalServerError
			if he := internal.AsHTTPError(err); he != nil {
				code = he.Code
			}
			return c.JSON(code, map[string]string{"error": err.Error()})
		}))

		w := serve(app, http.MethodGet, "/fail")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"error":"boom"}`, w.Body.String())

		w = serve(app, http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"error":"Not Found"}`, w.Body.String())
	})

	t.Run("broken route table", func(t *testing.T) {
		t.Parallel()

		reg := internal.NewRegistry().MustRegister("web/frontend/Bad", &stubHandler{paths: []string{"/{route_info}"}})
		app := internal.New(internal.WithRegistry(reg), internal.WithRouters(internal.NewWebRouter(reg)))

		err := app.Build(context.Background())
		require.ErrorIs(t, err, internal.ErrInvalidValue)
		require.Contains(t, err.Error(), "web router")

		require.Equal(t, http.StatusInternalServerError, serve(app, http.MethodGet, "/").Code)
	})
}

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	var seen []string
	mw := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetHeader("X-Test", "value")
			seen = append(seen, c.RouteInfo().RouteName())
			return next(c)
		}
	}

	app := newTestApp(t, internal.WithMiddleware(mw))

	w := serve(app, http.MethodGet, "/users/profile")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "value", w.Header().Get("X-Test"))

	w = serve(app, http.MethodPost, "/webhooks/stripe")
	require.Equal(t, "value", w.Header().Get("X-Test"))

	require.Equal(t, []string{"frontend.users.profile", "webhook.stripe"}, seen)
}

func TestApp_ContextRouteHelpers(t *testing.T) {
	t.Parallel()

	sites := website.New(website.Sites{"shop.test": 7}, 1)

	t.Run("url for and website", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "http://shop.test/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")

		requestVia(t, req, []internal.Option{internal.WithWebsiteResolver(sites)}, func(c internal.Context) {
			require.Equal(t, "https://shop.test/", c.URLFor("frontend.probe", nil))
			require.Equal(t, "https://shop.test", c.URLFor("unknown", nil))
			require.Equal(t, int64(7), c.WebsiteID())
			require.Equal(t, "shop.test", c.Domain())
			require.NotNil(t, c.Router())
			require.True(t, c.RouteInfo().Found())

			ri, ok := internal.RouteInfoFromContext(c.Context())
			require.True(t, ok)
			require.Equal(t, "frontend.probe", ri.RouteName())
		})
	})

	t.Run("website from context wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "http://other.test/", nil)
		req = req.WithContext(website.WithID(req.Context(), 99))

		requestVia(t, req, []internal.Option{internal.WithWebsiteResolver(sites)}, func(c internal.Context) {
			require.Equal(t, int64(99), c.WebsiteID())
		})
	})

	t.Run("params", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/42?page=3", nil)
		requestViaParam(t, req, nil, func(c internal.Context) {
			require.Equal(t, map[string]string{"id": "42"}, c.Params())
			require.Equal(t, 42, internal.Param[int](c, "id"))
			require.Equal(t, 3, internal.QueryDefault(c, "page", 1))
			require.Equal(t, "fallback", c.QueryDefault("sort", "fallback"))
		})
	})
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, internal.WithHealthChecks(
		internal.WithReadinessPath("/ready"),
		internal.WithReadinessCheck("rewrites", func(context.Context) error { return errors.New("down") }),
	))

	w := serve(app, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = serve(app, http.MethodGet, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	assets := fstest.MapFS{
		"public/app.css": &fstest.MapFile{Data: []byte("body{}")},
	}
	app := newTestApp(t, internal.WithStaticFiles("/static/", assets, "public"))

	w := serve(app, http.MethodGet, "/static/app.css")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	require.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/static/").Code)
}

func TestApp_RouteExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), internal.RouteExtractor()))

	reg := internal.NewRegistry().MustRegister("web/frontend/Hello", internal.HandlerFunc(func(c internal.Context) error {
		c.LogInfo("hello")
		return c.NoContent(http.StatusNoContent)
	}))
	app := internal.New(
		internal.WithRegistry(reg),
		internal.WithRouters(internal.NewWebRouter(reg)),
		internal.WithCustomLogger(log),
	)

	w := serve(app, http.MethodGet, "/hello")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Contains(t, buf.String(), `"name":"frontend.hello"`)
	require.Contains(t, buf.String(), `"status":"found"`)
}

func TestApp_Build(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	require.NoError(t, app.Build(context.Background()))

	routers := app.Routers()
	require.Len(t, routers, 3)
	require.Equal(t, internal.TypeWeb, routers[len(routers)-1].Type())
	require.NotNil(t, app.Registry())
	require.NotNil(t, app.Mux())
}

func TestApp_Reload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := cache.NewMemory[[]byte]()
	t.Cleanup(func() { _ = tables.Close() })

	reg := internal.NewRegistry().MustRegister("web/frontend/Root", &stubHandler{paths: []string{"/"}, body: "home"})
	app := internal.New(
		internal.WithRegistry(reg),
		internal.WithRouters(internal.NewWebRouter(reg, internal.WithCache(tables))),
	)
	require.NoError(t, app.Build(ctx))

	// A stale entry left by an older deploy.
	require.NoError(t, tables.Set(ctx, "web.controllers", []byte(`{"stale":true}`), 0))
	require.NoError(t, app.Reload(ctx))

	raw, err := tables.Get(ctx, "web.controllers")
	require.NoError(t, err)
	require.NotContains(t, string(raw), "stale")
	require.Equal(t, "home", serve(app, http.MethodGet, "/").Body.String())
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var order []string

	app := newTestApp(t)
	err := app.Run("127.0.0.1:0",
		internal.WithContext(ctx),
		internal.StartupHook(func(context.Context) error {
			order = append(order, "startup")
			cancel()
			return nil
		}),
		internal.ShutdownHook(func(context.Context) error {
			order = append(order, "shutdown")
			return nil
		}),
	)

	require.NoError(t, err)
	require.Equal(t, []string{"startup", "shutdown"}, order)
}

func TestApp_Run_StartupFailure(t *testing.T) {
	t.Parallel()

	hookErr := errors.New("store unreachable")
	shutdownCalled := false

	err := newTestApp(t).Run("127.0.0.1:0",
		internal.StartupHook(func(context.Context) error { return hookErr }),
		internal.ShutdownHook(func(context.Context) error {
			shutdownCalled = true
			return nil
		}),
	)

	require.ErrorIs(t, err, hookErr)
	require.False(t, shutdownCalled)
}
