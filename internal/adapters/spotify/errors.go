package spotify

import "errors"

// Sentinel kinds for the music service adapter.
var (
	ErrBadReleaseDate = errors.New("bad release date")
	ErrDecode         = errors.New("decode response")
)
