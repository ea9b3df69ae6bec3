package model

import "errors"

// Pipeline error taxonomy. Each stage aborts with exactly one of
// these; callers match with errors.Is and map them onto their own
// responses. Per-feature repair failures are Environment warnings,
// never errors.
var (
	// ErrInvalidRequest rejects malformed input before any network or
	// geometry work.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstreamUnavailable means the feature source exhausted its
	// retries for at least one tile; retryable by the caller.
	ErrUpstreamUnavailable = errors.New("upstream feature source unavailable")

	// ErrEmptyResult means no buildings intersect the requested disk.
	ErrEmptyResult = errors.New("no buildings found for the requested area")

	// ErrTooManyFeatures means the building count exceeds the safety
	// ceiling; the caller should ask for a smaller radius.
	ErrTooManyFeatures = errors.New("too many buildings for the requested area")

	// ErrExtrusion means a composed layer failed to produce a
	// watertight solid; fatal for the request.
	ErrExtrusion = errors.New("layer could not be extruded into a watertight solid")
)
