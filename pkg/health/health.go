package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"
)

const (
	defaultTimeout = 2 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency, e.g. redis.Healthcheck or rewrite.Healthcheck.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response is the aggregated readiness result.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Healthy reports whether every check passed.
func (r *Response) Healthy() bool {
	return r.Status == StatusHealthy
}

// Failed returns the names of the failing checks in sorted order.
func (r *Response) Failed() []string {
	var names []string
	for name, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Check represents the status of a single health check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout bounds the whole check run. Default: 2 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used to report failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently under a shared timeout. A check that
// does not return before the deadline is reported with ErrCheckTimeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return run(ctx, checks, newConfig(opts...))
}

func run(ctx context.Context, checks Checks, cfg *config) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	type outcome struct {
		err  error
		name string
	}
	results := make(chan outcome, len(checks))
	for name, check := range checks {
		go func() { results <- outcome{name: name, err: probe(ctx, check)} }()
	}

	resp.Checks = make(map[string]Check, len(checks))
	for range checks {
		o := <-results
		if o.err == nil {
			resp.Checks[o.name] = Check{Status: StatusHealthy}
			continue
		}
		resp.Status = StatusUnhealthy
		resp.Checks[o.name] = Check{Status: StatusUnhealthy, Error: o.err.Error()}
		cfg.logger.WarnContext(ctx, "health check failed",
			slog.String("check", o.name),
			slog.Any("error", o.err),
		)
	}
	return resp
}

// probe runs one check. A check that ignores the deadline is abandoned and
// reported as timed out.
func probe(ctx context.Context, check CheckFunc) error {
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.Join(ErrCheckTimeout, err)
		}
		return err
	case <-ctx.Done():
		return ErrCheckTimeout
	}
}
