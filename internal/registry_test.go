package internal_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/internal"
)

// stubHandler is a page handler with optional routing overrides.
type stubHandler struct {
	name     string
	body     string
	paths    []string
	verbs    []string
	abstract bool
}

func (h *stubHandler) Handle(c internal.Context) error {
	return c.String(http.StatusOK, h.body)
}

func (h *stubHandler) RoutePaths() []string { return h.paths }
func (h *stubHandler) RouteVerbs() []string { return h.verbs }
func (h *stubHandler) RouteName() string    { return h.name }
func (h *stubHandler) Abstract() bool       { return h.abstract }

// crudStub is a stubHandler bound to a model.
type crudStub struct {
	stubHandler
	model string
}

func (h *crudStub) Model() string { return h.model }

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("trims slashes", func(t *testing.T) {
		t.Parallel()

		reg := internal.NewRegistry()
		require.NoError(t, reg.Register("/web/frontend/Home/", &stubHandler{}))

		_, ok := reg.Lookup("web/frontend/Home")
		require.True(t, ok)
		require.Equal(t, 1, reg.Len())
	})

	t.Run("duplicate class", func(t *testing.T) {
		t.Parallel()

		reg := internal.NewRegistry().MustRegister("web/frontend/Home", &stubHandler{})
		err := reg.Register("web/frontend/Home", &stubHandler{})
		require.ErrorIs(t, err, internal.ErrDuplicateClass)
	})

	t.Run("invalid class", func(t *testing.T) {
		t.Parallel()

		reg := internal.NewRegistry()
		for _, class := range []string{"", "web//Home", "web/front end/Home", "web/Home.php"} {
			require.ErrorIs(t, reg.Register(class, &stubHandler{}), internal.ErrInvalidValue, class)
		}
		require.Zero(t, reg.Len())
	})

	t.Run("nil handler", func(t *testing.T) {
		t.Parallel()

		err := internal.NewRegistry().Register("web/frontend/Home", nil)
		require.ErrorIs(t, err, internal.ErrInvalidValue)
	})

	t.Run("must register panics", func(t *testing.T) {
		t.Parallel()

		reg := internal.NewRegistry().MustRegister("web/frontend/Home", &stubHandler{})
		require.Panics(t, func() { reg.MustRegister("web/frontend/Home", &stubHandler{}) })
	})
}

func TestRegistry_List(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry().
		MustRegister("web/frontend/Home", &stubHandler{}).
		MustRegister("crud/Posts", &crudStub{}).
		MustRegister("web/frontend/users/Profile", &stubHandler{}).
		MustRegister("web/admin/Login", &stubHandler{}).
		MustRegister("webhooks/Stripe", &stubHandler{})

	require.Equal(t, []string{
		"web/frontend/Home",
		"web/frontend/users/Profile",
		"web/admin/Login",
	}, reg.List("web", true))

	require.Equal(t, []string{"web/frontend/Home"}, reg.List("web/frontend", false))
	require.Empty(t, reg.List("web", false))
	require.Equal(t, []string{"webhooks/Stripe"}, reg.List("/webhooks/", true))
	require.Empty(t, reg.List("graphql", true))
	require.Len(t, reg.List("", true), 5)
}
