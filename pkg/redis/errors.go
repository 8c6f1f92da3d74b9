package redis

import "errors"

var (
	// ErrNoURL is returned when no connection URL is configured. Callers
	// treat it as "use the in-process cache".
	ErrNoURL = errors.New("route cache: redis url is empty")

	ErrInvalidURL  = errors.New("route cache: invalid redis url")
	ErrUnreachable = errors.New("route cache: redis unreachable")
	ErrPing        = errors.New("route cache: redis ping failed")
)
