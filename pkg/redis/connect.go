package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxBackoff caps the wait between connection attempts.
const maxBackoff = 30 * time.Second

// Option tunes the client built by Open.
type Option func(*settings)

// settings overlays the connection parameters parsed from the URL.
type settings struct {
	poolSize     int
	minIdle      int
	readTimeout  time.Duration
	writeTimeout time.Duration
	dialTimeout  time.Duration

	attempts int
	backoff  time.Duration
}

func defaultSettings() *settings {
	return &settings{
		poolSize:     10,
		minIdle:      2,
		readTimeout:  500 * time.Millisecond,
		writeTimeout: 500 * time.Millisecond,
		dialTimeout:  3 * time.Second,
		attempts:     3,
		backoff:      2 * time.Second,
	}
}

func (s *settings) apply(o *redis.Options) {
	o.PoolSize = s.poolSize
	o.MinIdleConns = s.minIdle
	o.ReadTimeout = s.readTimeout
	o.WriteTimeout = s.writeTimeout
	o.DialTimeout = s.dialTimeout
}

// WithPoolSize caps open connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(s *settings) { s.poolSize = n }
}

// WithMinIdleConns keeps n connections warm. Default: 2.
func WithMinIdleConns(n int) Option {
	return func(s *settings) { s.minIdle = n }
}

// WithRetry sets how often Open tries to reach the server. The wait starts
// at backoff and doubles per attempt, up to 30 seconds.
// Default: 3 attempts, 2 seconds.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *settings) {
		s.attempts = attempts
		s.backoff = backoff
	}
}

// WithReadTimeout bounds reads. Default: 500ms.
func WithReadTimeout(d time.Duration) Option {
	return func(s *settings) { s.readTimeout = d }
}

// WithWriteTimeout bounds writes. Default: 500ms.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) { s.writeTimeout = d }
}

// WithDialTimeout bounds connection setup. Default: 3s.
func WithDialTimeout(d time.Duration) Option {
	return func(s *settings) { s.dialTimeout = d }
}

// Open connects to the redis:// or rediss:// url and returns the client once
// it answers PING.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	switch {
	case url == "":
		return nil, ErrNoURL
	case !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://"):
		return nil, ErrInvalidURL
	}

	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	s.apply(parsed)

	return dial(ctx, parsed, s.attempts, s.backoff)
}

// OpenConfig is Open driven by environment configuration.
func OpenConfig(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	return Open(ctx, cfg.URL, cfg.Options()...)
}

func dial(ctx context.Context, opts *redis.Options, attempts int, backoff time.Duration) (redis.UniversalClient, error) {
	var lastErr error
	for attempt := range max(attempts, 1) {
		if attempt > 0 {
			if err := wait(ctx, backoffFor(attempt, backoff)); err != nil {
				return nil, errors.Join(ErrUnreachable, err)
			}
		}

		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()
	}
	return nil, errors.Join(ErrUnreachable, lastErr)
}

// backoffFor returns the wait before attempt n (n >= 1).
func backoffFor(n int, base time.Duration) time.Duration {
	d := base
	for i := 1; i < n && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
