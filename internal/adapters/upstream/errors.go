package upstream

import "errors"

// Sentinel kinds for upstream calls. Callers see them wrapped together with
// model.ErrUpstreamUnavailable or model.ErrNotFound.
var (
	ErrStatus      = errors.New("unexpected status")
	ErrCircuitOpen = errors.New("circuit open")
)
