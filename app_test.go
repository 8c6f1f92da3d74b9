package cmsroute_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrymomot/cmsroute"
	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// homeHandler answers with a fixed message.
type homeHandler struct {
	message string
}

func (h *homeHandler) Handle(c cmsroute.Context) error {
	return c.String(http.StatusOK, h.message)
}

func (h *homeHandler) RoutePaths() []string { return []string{"/"} }

// pageHandler echoes the resolved route as JSON.
type pageHandler struct{}

func (pageHandler) Handle(c cmsroute.Context) error {
	info := c.RouteInfo()
	rewriteID, _ := info.RewriteID()
	return c.JSON(http.StatusOK, map[string]any{
		"id":      cmsroute.Param[int](c, "id"),
		"name":    info.RouteName(),
		"rewrite": rewriteID,
	})
}

func (pageHandler) RoutePaths() []string { return []string{"/page/{id:\\d+}"} }
func (pageHandler) RouteVerbs() []string { return []string{http.MethodGet} }

// echoHandler writes the request body back.
type echoHandler struct{}

func (echoHandler) Handle(c cmsroute.Context) error {
	body, _ := io.ReadAll(c.Request().Body)
	return c.String(http.StatusOK, string(body))
}

func (echoHandler) RouteVerbs() []string { return []string{http.MethodPost} }

// testMiddleware adds a header to all responses.
func testMiddleware(headerName, headerValue string) cmsroute.Middleware {
	return func(next cmsroute.HandlerFunc) cmsroute.HandlerFunc {
		return func(c cmsroute.Context) error {
			c.SetHeader(headerName, headerValue)
			return next(c)
		}
	}
}

func newRegistry() *cmsroute.Registry {
	return cmsroute.NewRegistry().
		MustRegister("web/frontend/Home", &homeHandler{message: "hello"}).
		MustRegister("web/frontend/Page", pageHandler{}).
		MustRegister("webhooks/Echo", echoHandler{})
}

func TestNew(t *testing.T) {
	app := cmsroute.New()
	if app == nil {
		t.Fatal("New() returned nil")
	}
}

func TestIntegration(t *testing.T) {
	reg := newRegistry()
	store := rewrite.NewMemory(rewrite.Record{ID: 11, URL: "/en/about.html", Route: "/page/3"})
	tables := cache.NewMemory[[]byte]()
	t.Cleanup(func() { _ = tables.Close() })

	app := cmsroute.New(
		cmsroute.WithRegistry(reg),
		cmsroute.WithRouters(
			cmsroute.NewWebRouter(reg, cmsroute.WithCache(tables), cmsroute.WithRewriteStore(store)),
			cmsroute.NewWebhooksRouter(reg, cmsroute.WithCache(tables)),
		),
		cmsroute.WithMiddleware(testMiddleware("X-Test", "test-value")),
	)

	ts := httptest.NewServer(app)
	defer ts.Close()

	baseURL := ts.URL

	t.Run("GET /", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/")
		if err != nil {
			t.Fatalf("GET / error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "hello" {
			t.Errorf("body = %q, want %q", string(body), "hello")
		}

		if got := resp.Header.Get("X-Test"); got != "test-value" {
			t.Errorf("X-Test header = %q, want %q", got, "test-value")
		}
	})

	t.Run("GET /page/{id}", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/page/9")
		if err != nil {
			t.Fatalf("GET /page/9 error: %v", err)
		}
		defer resp.Body.Close()

		var data struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Rewrite int64  `json:"rewrite"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			t.Fatalf("json decode error: %v", err)
		}

		if data.ID != 9 {
			t.Errorf("id = %d, want %d", data.ID, 9)
		}
		if data.Name != "frontend.page" {
			t.Errorf("name = %q, want %q", data.Name, "frontend.page")
		}
		if data.Rewrite != 0 {
			t.Errorf("rewrite = %d, want 0", data.Rewrite)
		}
	})

	t.Run("GET rewritten URL", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/en/about.html")
		if err != nil {
			t.Fatalf("GET /en/about.html error: %v", err)
		}
		defer resp.Body.Close()

		var data struct {
			ID      int   `json:"id"`
			Rewrite int64 `json:"rewrite"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			t.Fatalf("json decode error: %v", err)
		}

		if data.ID != 3 {
			t.Errorf("id = %d, want %d", data.ID, 3)
		}
		if data.Rewrite != 11 {
			t.Errorf("rewrite = %d, want %d", data.Rewrite, 11)
		}
	})

	t.Run("POST /webhooks/echo", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/webhooks/echo", "text/plain", strings.NewReader("ping"))
		if err != nil {
			t.Fatalf("POST error: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "ping" {
			t.Errorf("body = %q, want %q", string(body), "ping")
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/page/9", "text/plain", nil)
		if err != nil {
			t.Fatalf("POST error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
		}
		if got := resp.Header.Get("Allow"); got != "GET" {
			t.Errorf("Allow = %q, want %q", got, "GET")
		}
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/missing")
		if err != nil {
			t.Fatalf("GET error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("tables are cached", func(t *testing.T) {
		for _, key := range []string{"web.controllers", "webhooks.controllers"} {
			if _, err := tables.Get(context.Background(), key); err != nil {
				t.Errorf("cache entry %q: %v", key, err)
			}
		}
	})
}

func TestBuild(t *testing.T) {
	reg := cmsroute.NewRegistry().
		MustRegister("web/frontend/Broken", &brokenHandler{})

	app := cmsroute.New(
		cmsroute.WithRegistry(reg),
		cmsroute.WithRouters(cmsroute.NewWebRouter(reg)),
	)

	err := app.Build(context.Background())
	if err == nil {
		t.Fatal("Build() error = nil, want reserved name error")
	}

	var invalid *cmsroute.InvalidValueError
	if !errors.As(err, &invalid) {
		t.Errorf("Build() error = %v, want *InvalidValueError", err)
	}
}

type brokenHandler struct{}

func (*brokenHandler) Handle(c cmsroute.Context) error { return nil }
func (*brokenHandler) RoutePaths() []string           { return []string{"/broken/{container}"} }

func TestWithCustomLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := cmsroute.NewRegistry().
		MustRegister("web/frontend/Fail", failingHandler{})
	app := cmsroute.New(
		cmsroute.WithRegistry(reg),
		cmsroute.WithRouters(cmsroute.NewWebRouter(reg)),
		cmsroute.WithCustomLogger(log),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("log output %q does not mention the handler error", buf.String())
	}
}

func TestWithCustomLoggerNil(t *testing.T) {
	app := cmsroute.New(cmsroute.WithCustomLogger(nil))
	if app == nil {
		t.Fatal("New() returned nil")
	}
}

type failingHandler struct{}

func (failingHandler) Handle(c cmsroute.Context) error {
	return errors.New("boom")
}
