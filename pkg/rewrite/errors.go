package rewrite

import "errors"

var (
	// ErrNotFound is returned when no rewrite exists for a query.
	ErrNotFound = errors.New("rewrite: not found")

	ErrInvalidRecord  = errors.New("rewrite: invalid record")
	ErrStoreClosed    = errors.New("rewrite: store closed")
	ErrStoreFailed    = errors.New("rewrite: store operation failed")
	ErrUnknownDriver  = errors.New("rewrite: unknown store driver")
	ErrHealthcheck    = errors.New("rewrite: healthcheck failed")
	ErrCircuitOpen    = errors.New("rewrite: circuit breaker open")
	ErrMigrationsFail = errors.New("rewrite: failed to apply migrations")
)
