// Package cmsroute resolves request paths of a content managed site to
// handler classes.
//
// Handlers are registered under class identifiers that encode their router,
// area and position ("web/frontend/blog/Post"). Each router scans its
// namespace of the registry, derives one route per class, and resolves
// requests against the resulting table. Tables are cached, so additional
// workers skip the scan.
//
// # Quick Start
//
//	reg := cmsroute.NewRegistry().
//	    MustRegister("web/frontend/Home", handlers.NewHome()).
//	    MustRegister("web/frontend/blog/Post", handlers.NewPost(repo)).
//	    MustRegister("web/admin/Login", handlers.NewLogin(auth))
//
//	app := cmsroute.New(
//	    cmsroute.WithRegistry(reg),
//	    cmsroute.WithRouters(
//	        cmsroute.NewWebRouter(reg, cmsroute.WithRewriteStore(store)),
//	    ),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// A handler implements [Handler]. Optional interfaces override what the
// router derives from the class identifier:
//
//	type Post struct{ repo *Repo }
//
//	func (h *Post) Handle(c cmsroute.Context) error {
//	    post, err := h.repo.Find(c.Context(), c.Param("slug"))
//	    if err != nil {
//	        return cmsroute.ErrNotFound("post not found")
//	    }
//	    return c.JSON(http.StatusOK, post)
//	}
//
//	func (h *Post) RoutePaths() []string { return []string{"/blog/{slug}[/{page:\\d+}]"} }
//	func (h *Post) RouteVerbs() []string { return []string{http.MethodGet} }
//
// Without RoutePaths the class "web/frontend/blog/Post" is served at
// /blog/post and named "frontend.blog.post".
//
// # Routers
//
// Four routers are provided. The web router serves everything not claimed
// by another router and is the only one that consults the rewrite store:
//
//	NewWebRouter       web/        /
//	NewCrudRouter      crud/       /crud
//	NewGraphQLRouter   graphql/    /graphql
//	NewWebhooksRouter  webhooks/   /webhooks
//
// # Rewrites
//
// Pretty URLs are stored per website in a [rewrite.Store]. When the table has
// no match for a path, the web router looks the path up and resolves the
// record's route instead. The resolved [RouteInfo] carries the record id.
//
// # Caching
//
// Pass a shared cache to run several workers off one table:
//
//	client, err := redis.OpenConfig(ctx, cfg.Redis)
//	tables := cache.NewRedis[[]byte](client, cache.Raw{}, cache.WithPrefix("cms:"))
//	web := cmsroute.NewWebRouter(reg, cmsroute.WithCache(tables))
//
// Call Router.Invalidate after deploying new handlers.
//
// # Error Handling
//
// Handlers return errors. [HTTPError] values keep their status code, any
// other error is logged and answered with 500. Use [WithErrorHandler] to
// render errors differently.
package cmsroute
