// Package spotify adapts the Spotify Web API to the radar's collaborator
// interfaces: liked songs, related artists, artist releases and playlists.
package spotify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/soltify/internal/adapters/upstream"
	"github.com/okian/soltify/pkg/logger"
)

const (
	// DefaultBaseURL is the public Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	maxPageSize     = 50
	maxPlaylistPage = 100
	// MaxPlaylistBatch is the most URIs one playlist write accepts.
	MaxPlaylistBatch = 100
)

// Client talks to the Web API with a bearer token.
type Client struct {
	base   string
	token  string
	market string
	up     *upstream.Client
	log    logger.Logger
}

// New creates a Client. baseURL defaults to DefaultBaseURL.
func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.up == nil {
		c.up = upstream.New("spotify", upstream.WithLogger(c.log))
	}
	return c
}

// endpoint resolves a path against the base URL. Absolute URLs, as found in
// paging "next" links, are returned unchanged.
func (c *Client) endpoint(path string, q url.Values) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.up.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		c.authorize(req)
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, rawURL, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, in any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", method, err)
	}
	_, err = c.up.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		c.authorize(req)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	return err
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) marketQuery(q url.Values) url.Values {
	if c.market != "" {
		q.Set("market", c.market)
	}
	return q
}

// Wire types.

type paging[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumObject struct {
	ID                   string         `json:"id"`
	URI                  string         `json:"uri"`
	Name                 string         `json:"name"`
	AlbumType            string         `json:"album_type"`
	AlbumGroup           string         `json:"album_group"`
	ReleaseDate          string         `json:"release_date"`
	ReleaseDatePrecision string         `json:"release_date_precision"`
	Artists              []artistObject `json:"artists"`
	ExternalURLs         struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type trackObject struct {
	ID      string         `json:"id"`
	URI     string         `json:"uri"`
	Name    string         `json:"name"`
	Artists []artistObject `json:"artists"`
	Album   albumObject    `json:"album"`
}
