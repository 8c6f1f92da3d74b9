package rewrite

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerOption configures a Breaker.
type BreakerOption func(*breakerOptions)

type breakerOptions struct {
	logger      *slog.Logger
	name        string
	failures    uint32
	openTimeout time.Duration
}

// WithBreakerName sets the name reported in state-change logs. Default: "rewrites".
func WithBreakerName(name string) BreakerOption {
	return func(o *breakerOptions) {
		o.name = name
	}
}

// WithFailureThreshold sets how many consecutive failures open the circuit. Default: 5.
func WithFailureThreshold(n uint32) BreakerOption {
	return func(o *breakerOptions) {
		if n > 0 {
			o.failures = n
		}
	}
}

// WithOpenTimeout sets how long the circuit stays open before a trial request. Default: 10s.
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		if d > 0 {
			o.openTimeout = d
		}
	}
}

// WithBreakerLogger logs circuit state changes.
func WithBreakerLogger(l *slog.Logger) BreakerOption {
	return func(o *breakerOptions) {
		o.logger = l
	}
}

// Breaker guards a Store's read path with a circuit breaker. While the
// circuit is open, lookups fail immediately with ErrCircuitOpen instead of
// waiting on an unreachable database, and routers treat them as a miss.
// ErrNotFound counts as success.
type Breaker struct {
	Store
	cb *gobreaker.CircuitBreaker
}

// NewBreaker wraps s.
func NewBreaker(s Store, opts ...BreakerOption) *Breaker {
	o := &breakerOptions{name: "rewrites", failures: 5, openTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	settings := gobreaker.Settings{
		Name:        o.name,
		MaxRequests: 1,
		Timeout:     o.openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= o.failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	}
	if o.logger != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			o.logger.Warn("rewrite store circuit changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}
	}

	return &Breaker{Store: s, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Find runs the lookup through the circuit breaker.
func (b *Breaker) Find(ctx context.Context, q Query) (Record, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.Store.Find(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Record{}, errors.Join(ErrCircuitOpen, err)
	}
	if err != nil {
		return Record{}, err
	}
	return res.(Record), nil
}

// SaveAll bypasses the circuit, like every write.
func (b *Breaker) SaveAll(ctx context.Context, recs []Record) error {
	return Import(ctx, b.Store, recs)
}

// State reports the circuit state: closed, half-open or open.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

var _ Store = (*Breaker)(nil)
