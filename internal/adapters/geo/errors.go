package geo

import "errors"

// ErrLookupFailed marks any failed commune resolution. Lookup swallows it
// per code; it surfaces only through metrics and debug logs.
var ErrLookupFailed = errors.New("commune lookup failed")
