// Package rewrite persists URL rewrites: records mapping a human-readable
// URL on a website to the internal route string a router dispatches.
//
// A [Record] such as {URL: "/en/about.html", Route: "/page/42"} lets the web
// router resolve a CMS-managed pretty URL to the page handler bound to
// "/page/{id:\d+}".
//
// # Stores
//
//   - [Postgres] runs on a pgx pool, with the schema from [PostgresMigrations].
//   - [SQLite] runs on modernc.org/sqlite and migrates itself on open.
//   - [Memory] keeps records in process.
//
// [Open] builds one from [Config] and, by default, wraps it in a [Breaker]
// so an unreachable database trips a circuit instead of slowing every
// unmatched request.
//
// Routers only call [Finder.Find]. The write methods exist for operators
// and tests; lookups are by exact URL and website id.
package rewrite
