package health

import "errors"

// ErrCheckTimeout is reported for a check that outlives the run's deadline.
var ErrCheckTimeout = errors.New("health: check timeout")
