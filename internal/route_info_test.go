package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/internal"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

func resolveWeb(t *testing.T, reg *internal.Registry, method, uri string, opts ...internal.RouterOption) internal.RouteInfo {
	t.Helper()
	info, err := internal.NewWebRouter(reg, opts...).Resolve(context.Background(), method, uri, "example.com")
	require.NoError(t, err)
	return info
}

func TestRouteInfo_AdminRoutes(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry().
		MustRegister("web/admin/Login", &stubHandler{}).
		MustRegister("web/admin/content/Pages", &stubHandler{}).
		MustRegister("web/frontend/Home", &stubHandler{}).
		MustRegister("web/frontend/Administrators", &stubHandler{name: "administrators"})

	tests := []struct {
		uri   string
		admin bool
	}{
		{uri: "/admin/login", admin: true},
		{uri: "/admin/content/pages", admin: true},
		{uri: "/home", admin: false},
		// Name based: any name starting with "admin" counts.
		{uri: "/administrators", admin: true},
		{uri: "/missing", admin: false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			t.Parallel()

			info := resolveWeb(t, reg, http.MethodGet, tt.uri)
			require.Equal(t, tt.admin, info.IsAdminRoute())
			require.Equal(t, tt.admin, info.WorksOffline())
		})
	}
}

func TestRouteInfo_Accessors(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry().
		MustRegister("web/frontend/Page", &stubHandler{paths: []string{"/page/{id:\\d+}"}})

	info := resolveWeb(t, reg, http.MethodGet, "/page/9")

	vars := info.Vars()
	vars["id"] = "changed"
	require.Equal(t, "9", info.Var("id"), "Vars returns a copy")
	require.Empty(t, info.Var("missing"))

	tagged := info.WithType("custom")
	require.Equal(t, "custom", tagged.Type())
	require.Equal(t, internal.TypeWeb, info.Type())
}

func TestRouteInfo_MarshalJSON(t *testing.T) {
	t.Parallel()

	store := rewrite.NewMemory(rewrite.Record{ID: 5, URL: "/en/about.html", Route: "/page/42"})
	reg := internal.NewRegistry().
		MustRegister("web/frontend/Page", &stubHandler{paths: []string{"/page/{id:\\d+}"}, verbs: []string{http.MethodGet}})

	t.Run("found through rewrite", func(t *testing.T) {
		t.Parallel()

		info := resolveWeb(t, reg, http.MethodGet, "/en/about.html", internal.WithRewriteStore(store))
		data, err := json.Marshal(info)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"status": "found",
			"handler": {"class": "web/frontend/Page", "method": "Handle"},
			"vars": {"id": "42"},
			"rewrite_id": 5,
			"uri": "/en/about.html",
			"method": "GET",
			"route": "/page/42",
			"name": "frontend.page",
			"type": "web"
		}`, string(data))
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()

		info := resolveWeb(t, reg, http.MethodPost, "/page/1")
		data, err := json.Marshal(info)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"status": "method_not_allowed",
			"allowed_methods": ["GET"],
			"uri": "/page/1",
			"method": "POST",
			"route": "/page/1",
			"type": "web"
		}`, string(data))
	})
}

func TestRouteInfo_LogValue(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry().
		MustRegister("web/frontend/Page", &stubHandler{paths: []string{"/page/{id}"}})
	info := resolveWeb(t, reg, http.MethodGet, "/page/x")

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	log.Info("resolved", slog.Any("route", info))

	var entry struct {
		Route map[string]string `json:"route"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "found", entry.Route["status"])
	require.Equal(t, "frontend.page", entry.Route["name"])
	require.Equal(t, "web/frontend/Page::Handle", entry.Route["handler"])
	require.Equal(t, "/page/x", entry.Route["route"])
}
