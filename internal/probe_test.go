package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/internal"
)

// probeHandler records the context of the request it serves.
type probeHandler struct {
	fn    func(c internal.Context)
	paths []string
}

func (h *probeHandler) Handle(c internal.Context) error {
	h.fn(c)
	return nil
}

func (h *probeHandler) RoutePaths() []string { return h.paths }

func (h *probeHandler) RouteVerbs() []string { return []string{http.MethodGet, http.MethodPost} }

// requestVia serves req through an App whose web router maps "/" to a probe.
// It fails the test when the probe is never reached.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()
	return serveProbe(t, []string{"/"}, req, opts, fn)
}

// requestViaParam is like requestVia with the probe mounted at "/{id}".
func requestViaParam(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()
	return serveProbe(t, []string{"/{id}"}, req, opts, fn)
}

func serveProbe(t *testing.T, paths []string, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	reg := internal.NewRegistry().MustRegister("web/frontend/Probe", &probeHandler{
		paths: paths,
		fn: func(c internal.Context) {
			called = true
			fn(c)
		},
	})
	opts = append([]internal.Option{
		internal.WithRegistry(reg),
		internal.WithRouters(internal.NewWebRouter(reg)),
	}, opts...)
	app := internal.New(opts...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.True(t, called, "probe handler was not reached, status %d", w.Code)
	return w
}
