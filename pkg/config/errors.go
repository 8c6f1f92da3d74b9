package config

import "errors"

var (
	ErrParseConfig   = errors.New("config: failed to parse environment")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)
