package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNoFetcher is returned by Refresh when no provider client is
	// configured (snapshot-only mode).
	ErrNoFetcher = errors.New("no ticketing client configured")
)
