// Package pattern compiles route path patterns and dispatches request paths
// against an ordered table of them.
//
// # Pattern Syntax
//
// A pattern is a literal path with optional placeholders and optional
// trailing segments:
//
//	/users/{id}                 // {id} matches one path segment ([^/]+)
//	/page/{id:\d+}              // {id:regex} constrains the segment
//	/archive/{year:\d{4}}       // braces inside the regexp are balanced
//	/blog[/{slug}]              // [...] marks an optional trailing part
//	/files[/{dir}[/{name}]]     // optional parts may nest, but only at the end
//
// Placeholder names must be identifiers and must not be one of the
// [ReservedNames] ("container", "route_info", "route_data"). Parse reports
// malformed patterns with the sentinel errors in errors.go; use [errors.Is].
//
// # Dispatching
//
// [Dispatcher] keeps routes grouped by prefix, in registration order. Match
// walks the groups whose literal prefix matches the path and returns the
// first route that accepts both the path and the method:
//
//	d := pattern.NewDispatcher[string]()
//	_ = d.Add("/users", "/{id:\d+}", []string{"GET"}, "users.show")
//	_ = d.Add("/users", "/{id:\d+}", []string{"DELETE"}, "users.delete")
//
//	res := d.Match("GET", "/users/42")
//	// res.Status == pattern.Found, res.Target == "users.show", res.Vars["id"] == "42"
//
//	res = d.Match("POST", "/users/42")
//	// res.Status == pattern.MethodNotAllowed, res.Allowed == []string{"GET", "DELETE"}
//
// The first matching route wins regardless of specificity. A HEAD request
// falls back to a GET route when no route accepts HEAD explicitly.
//
// # Reverse Helpers
//
// [Pattern.Build] substitutes parameters back into a pattern for URL
// generation, and [Pattern.Heuristic] returns a loose regular expression
// used to pick between several routes bound to the same handler.
package pattern
