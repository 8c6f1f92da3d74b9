package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/cmsroute"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// useSQLite points the rewrite store at a fresh database so state survives
// between commands of one test.
func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("REWRITE_DRIVER", "sqlite")
	t.Setenv("REWRITE_SQLITE_PATH", filepath.Join(t.TempDir(), "cmsroute.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoutesCmd(t *testing.T) {
	useSQLite(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "routes")
		require.NoError(t, err)
		require.Contains(t, out, "ROUTER")
		require.Contains(t, out, "/blog/{slug}[/{page:\\d+}]")
		require.Contains(t, out, "webhooks/Rewrites::Handle")
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := run(t, "routes", "--router", "crud", "--format", "yaml")
		require.NoError(t, err)

		var tables []routerTable
		require.NoError(t, yaml.Unmarshal([]byte(out), &tables))
		require.Len(t, tables, 1)
		require.Equal(t, "crud", tables[0].Router)

		entries := tables[0].Table.Entries()
		require.Len(t, entries, 1)
		require.Equal(t, "crud/Pages", entries[0].Handler.Class)
	})

	t.Run("unknown router", func(t *testing.T) {
		_, err := run(t, "routes", "--router", "nope")
		require.ErrorContains(t, err, "unknown router")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "routes", "--format", "xml")
		require.ErrorContains(t, err, "unknown format")
	})
}

func TestResolveCmd(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "rewrite", "add", "/en/about.html", "/page/42", "--locale", "en")
	require.NoError(t, err)

	tests := []struct {
		name   string
		args   []string
		status string
		route  string
	}{
		{name: "table route", args: []string{"resolve", "/blog/hello/2"}, status: "found", route: "/blog/hello/2"},
		{name: "rewrite", args: []string{"resolve", "/en/about.html"}, status: "found", route: "/page/42"},
		{name: "mounted router", args: []string{"resolve", "-X", "POST", "/webhooks/rewrites"}, status: "found", route: "/webhooks/rewrites"},
		{name: "wrong verb", args: []string{"resolve", "-X", "DELETE", "/page/1"}, status: "method_not_allowed", route: "/page/1"},
		{name: "missing", args: []string{"resolve", "/nowhere"}, status: "not_found", route: "/nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)

			var info struct {
				Status string `json:"status"`
				Route  string `json:"route"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &info))
			require.Equal(t, tt.status, info.Status)
			require.Equal(t, tt.route, info.Route)
		})
	}
}

func TestURLCmd(t *testing.T) {
	useSQLite(t)
	t.Setenv("CMSROUTE_BASE_URL", "https://example.com")

	out, err := run(t, "url", "frontend.page", "id=3")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/page/3\n", out)

	_, err = run(t, "url", "frontend.missing")
	require.Error(t, err)

	_, err = run(t, "url", "frontend.page", "broken")
	require.ErrorContains(t, err, "want key=value")
}

func TestRewriteCmd(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "rewrite", "add", "/de/ueber", "/page/7", "--locale", "de", "--website", "2")
	require.NoError(t, err)
	require.Contains(t, out, "saved rewrite")

	out, err = run(t, "rewrite", "list", "--website", "2")
	require.NoError(t, err)
	require.Contains(t, out, "/de/ueber")

	_, err = run(t, "rewrite", "add", "no-slash", "/page/7")
	require.Error(t, err)
}

func TestRewriteImportCmd(t *testing.T) {
	useSQLite(t)

	file := filepath.Join(t.TempDir(), "rewrites.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
- url: /en/about.html
  route: /page/3
  locale: en
- url: /fr/a-propos.html
  route: /page/3
  locale: fr
  website_id: 2
`), 0o600))

	out, err := run(t, "rewrite", "import", file)
	require.NoError(t, err)
	require.Equal(t, "imported 2 rewrites\n", out)

	out, err = run(t, "rewrite", "list")
	require.NoError(t, err)
	require.Contains(t, out, "/en/about.html")
	require.NotContains(t, out, "/fr/a-propos.html")

	out, err = run(t, "resolve", "/en/about.html")
	require.NoError(t, err)
	var info struct {
		Route string `json:"route"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "/page/3", info.Route)

	invalid := filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`[{"url": "about", "route": "/page/3"}]`), 0o600))
	_, err = run(t, "rewrite", "import", invalid)
	require.ErrorContains(t, err, "record 0")
}

func TestCacheFlushCmd(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "cache", "flush")
	require.NoError(t, err)
	for _, name := range []string{"web", "crud", "graphql", "webhooks"} {
		require.Contains(t, out, "flushed "+name)
	}
}

func TestMigrateCmd(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "migrated sqlite rewrite store")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	require.Equal(t, "dev\n", out)
}

func TestRegistry_Paths(t *testing.T) {
	reg := registry(rewrite.NewMemory())
	web := cmsroute.NewWebRouter(reg)
	crud := cmsroute.NewCrudRouter(reg)

	tests := []struct {
		router *cmsroute.Router
		uri    string
		name   string
		found  bool
	}{
		{router: web, uri: "/page/42", name: "frontend.page", found: true},
		{router: web, uri: "/blog/hello", name: "frontend.blog.post", found: true},
		{router: web, uri: "/blog/hello/2", name: "frontend.blog.post", found: true},
		{router: web, uri: "/admin/dashboard", name: "admin.dashboard", found: true},
		{router: web, uri: "/cms/page/42"},
		{router: web, uri: "/blog/blog/hello"},
		{router: crud, uri: "/crud/pages/7", name: "crud.pages", found: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			info, err := tt.router.Resolve(context.Background(), http.MethodGet, tt.uri, "example.com")
			require.NoError(t, err)
			require.Equal(t, tt.found, info.Found())
			if tt.found {
				require.Equal(t, tt.name, info.RouteName())
			}
		})
	}
}
