package spotify

import (
	"github.com/okian/soltify/internal/adapters/upstream"
	"github.com/okian/soltify/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithMarket sets the market used to filter catalogue lookups.
func WithMarket(market string) Option {
	return func(c *Client) {
		c.market = market
	}
}

// WithUpstream replaces the HTTP plumbing.
func WithUpstream(u *upstream.Client) Option {
	return func(c *Client) {
		if u != nil {
			c.up = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
