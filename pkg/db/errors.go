package db

import "errors"

var (
	ErrNoDSN       = errors.New("rewrite db: connection string is empty")
	ErrInvalidDSN  = errors.New("rewrite db: invalid connection string")
	ErrUnreachable = errors.New("rewrite db: database unreachable")
	ErrPing        = errors.New("rewrite db: ping failed")

	// ErrMigrate wraps every failure to bring the rewrite schema up to date,
	// including an unknown dialect.
	ErrMigrate = errors.New("rewrite db: migration failed")
)
