package aoty

import "errors"

// Sentinel kinds for the critic-site reader.
var (
	ErrParse   = errors.New("parse critic page")
	ErrBadDate = errors.New("bad listing date")
)
