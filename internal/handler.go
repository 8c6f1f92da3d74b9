package internal

// Handler serves the requests a router resolves to its class.
//
// Example:
//
//	type Profile struct{ users *repository.Users }
//
//	func (h *Profile) Handle(c cmsroute.Context) error {
//	    return c.JSON(http.StatusOK, h.users.Get(c.Param("id")))
//	}
type Handler interface {
	Handle(c Context) error
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(c Context) error

// Handle calls f.
func (f HandlerFunc) Handle(c Context) error {
	return f(c)
}

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// It runs after route resolution, so RouteInfo is already set when the
// middleware is called.
//
// Example:
//
//	func Timing(next cmsroute.HandlerFunc) cmsroute.HandlerFunc {
//	    return func(c cmsroute.Context) error {
//	        start := time.Now()
//	        err := next(c)
//	        c.LogInfo("served", "took", time.Since(start))
//	        return err
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

// CrudHandler is the capability the CRUD router requires: a handler bound
// to a model.
type CrudHandler interface {
	Handler
	Model() string
}

// VerbProvider overrides the router's default HTTP verbs for a handler.
type VerbProvider interface {
	RouteVerbs() []string
}

// PathProvider overrides the path derived from the class name. Every
// returned pattern becomes a separate route sharing the handler.
type PathProvider interface {
	RoutePaths() []string
}

// NameProvider overrides the symbolic route name derived from the class.
type NameProvider interface {
	RouteName() string
}

// Abstracter marks base handlers that are registered but must not be routed.
type Abstracter interface {
	Abstract() bool
}

func isAbstract(h Handler) bool {
	a, ok := h.(Abstracter)
	return ok && a.Abstract()
}

// ActionHandler serves routes whose handler method is not DefaultMethod,
// such as routes added with Router.AddRoute.
type ActionHandler interface {
	Handler
	Action(method string, c Context) error
}
