package service

import "errors"

// Sentinel kinds for a radar run.
var (
	ErrRunInProgress = errors.New("run already in progress")
	ErrPlaylist      = errors.New("playlist unavailable")
	ErrLibrary       = errors.New("read liked songs")
	ErrProfile       = errors.New("build taste profile")
	ErrReleases      = errors.New("find releases")
	ErrPersist       = errors.New("persist run")
)
