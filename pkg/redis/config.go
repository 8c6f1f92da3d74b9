package redis

import "time"

// Config holds the Redis connection settings used for the shared route cache.
// Fields are populated from environment variables.
type Config struct {
	URL string `env:"REDIS_URL"`

	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`

	// Route lookups sit on the request path, so reads must fail fast.
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"500ms"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"500ms"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"3s"`
}

// Options converts the config into connection options for Open.
func (c Config) Options() []Option {
	opts := []Option{WithRetry(c.RetryAttempts, c.RetryInterval)}
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	if c.MinIdleConns >= 0 {
		opts = append(opts, WithMinIdleConns(c.MinIdleConns))
	}
	if c.ReadTimeout > 0 {
		opts = append(opts, WithReadTimeout(c.ReadTimeout))
	}
	if c.WriteTimeout > 0 {
		opts = append(opts, WithWriteTimeout(c.WriteTimeout))
	}
	if c.DialTimeout > 0 {
		opts = append(opts, WithDialTimeout(c.DialTimeout))
	}
	return opts
}
