package gate

import "errors"

// Sentinel kinds for gate errors.
var (
	ErrNoConfirmer = errors.New("release needs confirmation but no confirmer is configured")
	ErrConfirm     = errors.New("confirmation failed")
)
