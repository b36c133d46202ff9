package model

import "errors"

// Error kinds shared by the core and its collaborators.
var (
	// ErrNotFound reports an absent snapshot or playlist.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable reports a failed call into an external collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
