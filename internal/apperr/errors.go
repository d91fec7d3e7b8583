package apperr

import "errors"

// ErrInvalidInput is returned when the domain input is empty or cannot be split
// into at least one label. It is the only error that aborts an enrichment.
var ErrInvalidInput = errors.New("invalid input")

// ErrRequestFailed is returned by HTTP-based lookups when the request fails at the
// transport level or the server responds with a non-2xx status code.
var ErrRequestFailed = errors.New("request failed")

// ErrLookupFailed is returned by DNS and registry lookups when the upstream source
// errors, times out, or returns a response that cannot be parsed.
var ErrLookupFailed = errors.New("lookup failed")

// ErrNotFound is returned when a source answered but holds no data for the query,
// e.g. NXDOMAIN, an empty answer section, or an unregistered domain.
var ErrNotFound = errors.New("not found")

// ErrStore is returned by the tabular stores on any I/O or serialization failure.
var ErrStore = errors.New("store failure")
