// Package health serves the liveness and readiness probes of a cmsroute
// deployment.
//
// Liveness only says the process is up. Readiness runs named [Checks]
// concurrently, typically the shared route cache and the rewrite store:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"redis":    redis.Healthcheck(client),
//		"rewrites": rewrite.Healthcheck(store),
//	}))
//
// Handlers answer with plain "OK" / "Service Unavailable" by default and
// with a JSON [Response] when the client sends Accept: application/json or
// ?format=json. [Run] executes the same checks outside HTTP, e.g. from the CLI.
package health
