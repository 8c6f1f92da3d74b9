// Package redis bootstraps the go-redis client that backs the shared route
// cache.
//
// Compiled route tables and rewrite snapshots are read on every request by
// every worker, so the defaults favour short read and write timeouts over
// patience: a slow cache degrades to a table rebuild rather than a stalled
// request.
//
// # Connecting
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0",
//		redis.WithPoolSize(20),
//		redis.WithRetry(5, time.Second),
//	)
//
// Or from environment configuration:
//
//	var cfg redis.Config // REDIS_URL, REDIS_POOL_SIZE, ...
//	client, err := redis.OpenConfig(ctx, cfg)
//
// Open pings the server and retries with a doubling wait. It returns
// [ErrNoURL] or [ErrInvalidURL] for bad input and
// [ErrUnreachable] when every attempt fails.
//
// # Lifecycle
//
// [Healthcheck] plugs into the readiness endpoint and [Shutdown] into the
// application's shutdown hooks:
//
//	app := cmsroute.New(
//		cmsroute.WithHealthChecks(health.Checks{"redis": redis.Healthcheck(client)}),
//		cmsroute.WithShutdownHook(redis.Shutdown(client)),
//	)
package redis
