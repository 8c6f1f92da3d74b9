// Package middlewares provides HTTP middleware for cmsroute applications.
//
// Middleware runs after the request has been resolved, so the route is
// available through Context.RouteInfo.
//
// # Request ID
//
// RequestID keeps an upstream X-Request-ID (or X-Correlation-ID) and
// generates a UUID otherwise. Combine it with RequestIDExtractor to add the
// ID to every log entry:
//
//	app := cmsroute.New(
//	    cmsroute.WithLogger("cms", cfg.Logger, middlewares.RequestIDExtractor()),
//	    cmsroute.WithMiddleware(middlewares.RequestID()),
//	)
//
// HTTP errors returned by handlers are stamped with the ID.
//
// # Recover
//
// Recover turns panics into a 500 HTTPError wrapping a PanicError that names
// the handler that panicked:
//
//	app := cmsroute.New(
//	    cmsroute.WithMiddleware(middlewares.Recover()),
//	    cmsroute.WithErrorHandler(func(c cmsroute.Context, err error) error {
//	        if pe, ok := middlewares.AsPanicError(err); ok {
//	            c.LogError("handler crashed", "handler", pe.Handler)
//	        }
//	        return c.Error(http.StatusInternalServerError, "internal error")
//	    }),
//	)
//
// # Timeout
//
// Timeout answers 504 when a handler outlives its budget. The budget can
// differ for the admin area and for single routes:
//
//	middlewares.Timeout(10*time.Second,
//	    middlewares.WithAdminTimeout(2*time.Minute),
//	    middlewares.WithRouteTimeout("frontend.sitemap", time.Minute),
//	)
//
// Handlers should watch GetTimeoutContext(c).Done() in long operations; the
// handler goroutine keeps running after the timeout fires.
//
// # Ordering
//
// Middleware runs in the order given. Put RequestID first so later
// middleware logs with the ID, and Recover before Timeout:
//
//	cmsroute.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Timeout(30*time.Second),
//	)
package middlewares
