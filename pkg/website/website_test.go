package website_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/pkg/website"
)

func TestResolver_Lookup(t *testing.T) {
	t.Parallel()

	r := website.New(website.Sites{
		"example.com":      1,
		"WWW.example.com":  1,
		"*.shop.example":   2,
		"vip.shop.example": 3,
		"  ":               9,
	}, 0)
	require.Equal(t, 4, r.Len())

	tests := []struct {
		domain string
		want   int64
		found  bool
	}{
		{domain: "example.com", want: 1, found: true},
		{domain: "Example.COM:8080", want: 1, found: true},
		{domain: "www.example.com.", want: 1, found: true},
		{domain: "blog.shop.example", want: 2, found: true},
		{domain: "a.b.shop.example", want: 2, found: true},
		{domain: "vip.shop.example", want: 3, found: true},
		{domain: "shop.example", want: 0, found: false},
		{domain: "unknown.org", want: 0, found: false},
		{domain: "", want: 0, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			t.Parallel()

			id, ok := r.Lookup(tt.domain)
			require.Equal(t, tt.want, id)
			require.Equal(t, tt.found, ok)
		})
	}
}

func TestResolver_Fallback(t *testing.T) {
	t.Parallel()

	r := website.New(nil, 7)
	require.EqualValues(t, 7, r.ID("anything.test"))
}

func TestParseSites(t *testing.T) {
	t.Parallel()

	sites, err := website.ParseSites([]string{"example.com=1", " *.shop.example = 2 ", ""})
	require.NoError(t, err)
	require.Equal(t, website.Sites{"example.com": 1, "*.shop.example": 2}, sites)

	for _, bad := range []string{"example.com", "=1", "example.com=x", "example.com=-1"} {
		_, err := website.ParseSites([]string{bad})
		require.ErrorIs(t, err, website.ErrInvalidSite, bad)
	}
}

func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	require.Equal(t, "example.com", website.NormalizeHost("Example.COM:8080"))
	require.Equal(t, "[::1]", website.NormalizeHost("[::1]:8080"))
	require.Equal(t, "[::1]", website.NormalizeHost("[::1]"))
	require.Equal(t, "localhost", website.NormalizeHost("localhost"))
}

func TestSubdomain(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.Host = "bar.foo.example.com"
	require.Equal(t, "bar.foo", website.Subdomain(req, "example.com"))
	req.Host = "example.com:443"
	require.Empty(t, website.Subdomain(req, "example.com"))
	req.Host = "other.com"
	require.Empty(t, website.Subdomain(req, "example.com"))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	r := website.New(website.Sites{"*.example.com": 5}, 0)

	var got int64
	h := r.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got, _ = website.FromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "shop.example.com"
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.EqualValues(t, 5, got)

	_, ok := website.FromContext(context.Background())
	require.False(t, ok)
}
