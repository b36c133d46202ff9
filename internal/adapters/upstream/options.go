package upstream

import (
	"net/http"
	"time"

	"github.com/okian/soltify/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithRate limits requests to rps per second. A value <= 0 disables pacing.
func WithRate(rps float64) Option {
	return func(cl *Client) {
		cl.rps = rps
	}
}

// WithRetries sets how many times a throttled or failed request is retried.
func WithRetries(n int) Option {
	return func(cl *Client) {
		if n >= 0 {
			cl.retries = n
		}
	}
}

// WithBackoff sets the wait before a retry when the server gives no Retry-After.
func WithBackoff(d time.Duration) Option {
	return func(cl *Client) {
		if d >= 0 {
			cl.backoff = d
		}
	}
}

// WithTripAfter opens the breaker after n consecutive failures.
func WithTripAfter(n uint32) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.tripAfter = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}
