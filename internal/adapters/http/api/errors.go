package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("invalid credentials")
	ErrMissingToken   = errors.New("authorization token required")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrRefreshFailed  = errors.New("refresh failed")
	ErrUnknownSortKey = errors.New("unknown sort key")
)
