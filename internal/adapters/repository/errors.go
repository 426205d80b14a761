package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	// ErrNoSnapshot is returned by Latest before the first successful
	// sync. Callers treat it as "start empty", not a failure.
	ErrNoSnapshot = errors.New("no snapshot stored")
)
