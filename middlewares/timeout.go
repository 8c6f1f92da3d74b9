package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/cmsroute/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

type timeoutContextKey struct{}

// TimeoutConfig holds the time budgets applied by Timeout.
type TimeoutConfig struct {
	Timeout time.Duration
	// Admin applies to routes of the admin area. Zero uses Timeout.
	Admin time.Duration
	// Routes overrides the budget per route name.
	Routes map[string]time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithAdminTimeout sets the budget of admin routes, which run imports and
// bulk edits.
func WithAdminTimeout(d time.Duration) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.Admin = d
	}
}

// WithRouteTimeout sets the budget of one route name.
func WithRouteTimeout(name string, d time.Duration) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		if cfg.Routes == nil {
			cfg.Routes = make(map[string]time.Duration)
		}
		cfg.Routes[name] = d
	}
}

// Budget returns the timeout for a resolved route: its own override, then
// the admin budget, then the default.
func (cfg *TimeoutConfig) Budget(info internal.RouteInfo) time.Duration {
	if d := cfg.Routes[info.RouteName()]; d > 0 {
		return d
	}
	if cfg.Admin > 0 && info.IsAdminRoute() {
		return cfg.Admin
	}
	return cfg.Timeout
}

// Timeout answers 504 when the handler outlives the budget of its route.
// The HTTPError wraps a *TimeoutError.
//
// The handler goroutine keeps running after the deadline; long operations
// should watch GetTimeoutContext.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := &TimeoutConfig{Timeout: timeout}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			info := c.RouteInfo()
			budget := cfg.Budget(info)

			ctx, cancel := context.WithTimeout(c.Context(), budget)
			defer cancel()
			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
			}

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ctx.Err()
			}
			c.LogWarn("request timeout",
				slog.Duration("budget", budget),
				slog.String("route_name", info.RouteName()),
			)
			return internal.NewHTTPError(http.StatusGatewayTimeout, "", internal.WithError(&TimeoutError{Duration: budget, Route: info.RouteName()}))
		}
	}
}

// GetTimeoutContext returns the context carrying the route's deadline, or
// the request context outside Timeout.
func GetTimeoutContext(c internal.Context) context.Context {
	if ctx, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return ctx
	}
	return c.Context()
}
