package main

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/cmsroute"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

// registry registers the handlers served by this binary. Sites embedding
// cmsroute register their own.
func registry(store rewrite.Store) *cmsroute.Registry {
	return cmsroute.NewRegistry().
		MustRegister("web/frontend/Home", homeHandler{}).
		MustRegister("web/frontend/Page", &pageHandler{store: store}).
		MustRegister("web/frontend/blog/Post", postHandler{}).
		MustRegister("web/frontend/Search", searchHandler{}).
		MustRegister("web/admin/Dashboard", dashboardHandler{}).
		MustRegister("crud/Pages", pagesHandler{}).
		MustRegister("graphql/Query", queryHandler{}).
		MustRegister("webhooks/Rewrites", &rewritesHook{store: store})
}

type homeHandler struct{}

func (homeHandler) Handle(c cmsroute.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"route": c.RouteInfo(),
		"page":  c.URLFor("frontend.page", map[string]string{"id": "1"}),
	})
}

func (homeHandler) RoutePaths() []string { return []string{"/"} }

// pageHandler serves CMS pages, usually reached through a rewrite.
type pageHandler struct {
	store rewrite.Store
}

func (h *pageHandler) Handle(c cmsroute.Context) error {
	info := c.RouteInfo()
	id, _ := cmsroute.Var[int64](info, "id")
	translations, err := h.store.FindByRoute(c.Context(), info.Route(), c.WebsiteID())
	if err != nil {
		c.LogWarn("translations unavailable", "error", err)
	}

	urls := make(map[string]string, len(translations))
	for _, rec := range translations {
		urls[rec.Locale] = rec.URL
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":           id,
		"route":        info,
		"translations": urls,
	})
}

func (*pageHandler) RoutePaths() []string { return []string{"/page/{id:\\d+}"} }
func (*pageHandler) RouteVerbs() []string { return []string{http.MethodGet} }

type postHandler struct{}

func (postHandler) Handle(c cmsroute.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"slug": c.Param("slug"),
		"page": cmsroute.QueryDefault(c, "page", 1),
	})
}

func (postHandler) RoutePaths() []string { return []string{"/{slug}[/{page:\\d+}]"} }
func (postHandler) RouteVerbs() []string { return []string{http.MethodGet} }

type searchHandler struct{}

func (searchHandler) Handle(c cmsroute.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"q": c.Query("q")})
}

type dashboardHandler struct{}

func (dashboardHandler) Handle(c cmsroute.Context) error {
	return c.String(http.StatusOK, "dashboard")
}

// pagesHandler exposes the page model over the CRUD router.
type pagesHandler struct{}

func (pagesHandler) Handle(c cmsroute.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"model":  "page",
		"method": c.Request().Method,
	})
}

func (pagesHandler) Model() string { return "page" }

func (pagesHandler) RoutePaths() []string { return []string{"/pages[/{id:\\d+}]"} }

type queryHandler struct{}

func (queryHandler) Handle(c cmsroute.Context) error {
	return c.Error(http.StatusNotImplemented, "graphql schema not configured")
}

// rewritesHook accepts rewrite records pushed by the CMS backend.
type rewritesHook struct {
	store rewrite.Store
}

func (h *rewritesHook) Handle(c cmsroute.Context) error {
	var rec rewrite.Record
	if err := json.NewDecoder(c.Request().Body).Decode(&rec); err != nil {
		return c.Error(http.StatusBadRequest, "invalid rewrite record", cmsroute.WithError(err))
	}
	if rec.WebsiteID == 0 {
		rec.WebsiteID = c.WebsiteID()
	}
	if err := rec.Validate(); err != nil {
		return c.Error(http.StatusUnprocessableEntity, err.Error())
	}
	if err := h.store.Save(c.Context(), &rec); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}
