package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck reports the rewrite database as unavailable while the pool
// cannot ping it. Without it, rewrite lookups degrade to misses.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrPing
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrPing, err)
		}
		return nil
	}
}

// Shutdown closes the pool once the server has drained.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		if pool != nil {
			pool.Close()
		}
		return nil
	}
}
