package clipfetch

import "errors"

var (
	// ErrInvalidURL indicates the input could not be classified as a supported media URL.
	ErrInvalidURL = errors.New("invalid media URL")
	// ErrResolutionFailed indicates every available strategy failed to resolve metadata.
	ErrResolutionFailed = errors.New("resolution failed")
	// ErrFormatNotFound indicates the requested format is not in the resolved format list.
	ErrFormatNotFound = errors.New("format not found")
	// ErrUpstreamUnavailable indicates the upstream asset could not be fetched.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	ErrDuplicateStrategy = errors.New("duplicate strategy name")
	ErrInvalidStrategy   = errors.New("invalid strategy")
)
