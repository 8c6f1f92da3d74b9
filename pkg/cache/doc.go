// Package cache provides the key-value store routers use to share compiled
// route tables and URL rewrite snapshots between requests and processes.
//
// # Keys
//
// Router data is stored under [Key], which joins the lower-cased router name
// and a data [Category]:
//
//	cache.Key("Web", cache.CategoryControllers) // "web.controllers"
//	cache.Key("web", cache.CategoryRoutes)      // "web.routes"
//
// # Backends
//
// [Memory] keeps entries in process with TTL expiration and optional LRU
// bounding. [Redis] shares entries between workers through a
// [github.com/redis/go-redis/v9.UniversalClient]:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[[]byte](client, cache.Raw{}, cache.WithPrefix("cms"))
//
// Both implement [Cache]. Entries written without a TTL never expire by
// default; route data is dropped by explicit invalidation instead.
//
// # Errors
//
// Get returns [ErrNotFound] on a miss, and operations on a closed Memory
// cache return [ErrClosed]. Encoding failures wrap [ErrEncode] or
// [ErrDecode].
package cache
