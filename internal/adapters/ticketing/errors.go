package ticketing

import "errors"

// Sentinel kinds for provider errors. Callers use errors.Is to distinguish
// an expired or rejected credential from a plain fetch failure.
var (
	ErrAuthFailed  = errors.New("ticketing auth failed")
	ErrFetchFailed = errors.New("ticketing fetch failed")
)
