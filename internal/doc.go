// Package internal provides the core types and implementation of cmsroute.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/cmsroute" instead, which re-exports the public API.
//
// # Core Types
//
//   - Registry: class identifiers ("web/frontend/users/Profile") mapped to handlers
//   - Router: builds a route table from one registry namespace and resolves requests
//   - RouteInfo: the immutable result of a resolution
//   - Table, Group, RouteEntry: the route table as cached and listed
//   - App: serves resolved routes over HTTP with graceful shutdown
//   - Context: request data and response helpers passed to handlers
//
// # Route Tables
//
// A router scans the registry under its namespace in registration order and
// derives one entry per handler class. For the web router the first namespace
// segment is the area:
//
//	web/frontend/users/Profile  ->  /users/profile   frontend.users.profile
//	web/admin/Login             ->  /admin/login     admin.login
//
// Handlers override the derived data through PathProvider, VerbProvider and
// NameProvider. Patterns use {name} and {name:regexp} placeholders and one
// trailing optional segment in brackets:
//
//	/blog/{slug}[/{page:\d+}]
//
// The placeholder names container, route_info and route_data are reserved.
// A table that uses them, or declares an unknown verb, fails to build and
// the build error is an *InvalidValueError.
//
// The encoded table is stored in the cache under "<router>.controllers".
// While that entry exists the registry is not scanned. Invalidate drops it.
//
// # Resolution
//
// Resolve matches the decoded request path against the table in order; the
// first match wins. A path matched only under other verbs yields
// StatusMethodNotAllowed with the union of accepted verbs. HEAD is served by
// GET routes.
//
// When nothing matches, the web router looks the path up in the rewrite
// store (cached per domain under "<router>.routes") and matches the record's
// route instead. A path ending in "/" finally falls back to path+"index".
//
// # Concurrency
//
// Routers build their table once per process; concurrent first requests
// share the build. Compiled tables are immutable and swapped atomically.
package internal
