package cache

import "errors"

var (
	// ErrNotFound is returned when a key does not exist or has expired.
	// Routers treat it as "build the table".
	ErrNotFound = errors.New("cache: miss")

	ErrClosed = errors.New("cache: closed")

	// ErrEncode and ErrDecode wrap codec failures. A decode failure on a
	// cached table means the entry is stale or corrupt and gets rebuilt.
	ErrEncode = errors.New("cache: encode failed")
	ErrDecode = errors.New("cache: decode failed")
)
