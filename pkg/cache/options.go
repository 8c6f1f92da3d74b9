package cache

import (
	"strings"
	"time"
)

// Option configures a cache backend. Options a backend has no use for are
// ignored, so one option list can configure either.
type Option func(*options)

type options struct {
	// defaultTTL applies to Set calls with a zero TTL. Negative never
	// expires: route snapshots are replaced by invalidation, not age.
	defaultTTL time.Duration

	// Memory only.
	cleanupInterval time.Duration
	maxEntries      int

	// Redis only.
	prefix string
}

func newOptions(opts []Option) *options {
	o := &options{
		defaultTTL:      -1,
		cleanupInterval: time.Minute,
		prefix:          "cmsroute",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDefaultTTL sets the expiration used when Set is called with a zero
// TTL. Default: no expiration.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) { o.defaultTTL = d }
}

// WithCleanupInterval sets how often Memory drops expired entries. Zero
// disables the janitor; expired entries are then dropped on access.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithMaxEntries bounds Memory, evicting the least recently used entry when
// full. Zero means unlimited (default).
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithPrefix namespaces Redis keys as "{prefix}:{key}". A trailing colon is
// accepted. An empty prefix stores keys verbatim and makes Clear flush the
// whole database. Default: "cmsroute".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = strings.TrimSuffix(prefix, ":") }
}
