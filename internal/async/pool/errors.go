package pool

import "errors"

// Sentinel errors for the pool package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running pool.
	ErrAlreadyRunning = errors.New("pool is already running")

	// ErrNotRunning is returned when Stop is called on a stopped pool.
	ErrNotRunning = errors.New("pool is not running")
)
