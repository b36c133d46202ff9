package aoty

import (
	"time"

	"github.com/okian/soltify/internal/adapters/upstream"
	"github.com/okian/soltify/pkg/logger"
)

// Option configures a Reader.
type Option func(*Reader)

// WithClock sets the time source used to place listing dates in a year.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMaxPages bounds how many listing pages are read. Zero means no bound.
func WithMaxPages(n int) Option {
	return func(r *Reader) {
		if n >= 0 {
			r.maxPages = n
		}
	}
}

// WithUpstream replaces the HTTP plumbing.
func WithUpstream(u *upstream.Client) Option {
	return func(r *Reader) {
		if u != nil {
			r.up = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}
