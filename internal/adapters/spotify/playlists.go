package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/source"
	"github.com/okian/soltify/pkg/logger"
)

type playlistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type playlistItem struct {
	Track *struct {
		URI string `json:"uri"`
	} `json:"track"`
}

// LoadPlaylist finds one of the user's playlists by exact name and returns
// the URIs of its songs.
func (c *Client) LoadPlaylist(ctx context.Context, name string) (source.Playlist, error) {
	id, err := c.findPlaylist(ctx, name)
	if err != nil {
		return source.Playlist{}, err
	}

	pl := source.Playlist{ID: id, Name: name}
	q := url.Values{
		"limit":  {strconv.Itoa(maxPlaylistPage)},
		"fields": {"items(track(uri)),next"},
	}
	next := c.endpoint("/playlists/"+url.PathEscape(id)+"/tracks", q)
	for next != "" {
		var page paging[playlistItem]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return source.Playlist{}, err
		}
		for _, it := range page.Items {
			if it.Track != nil && it.Track.URI != "" {
				pl.SongURIs = append(pl.SongURIs, it.Track.URI)
			}
		}
		next = page.Next
	}
	return pl, nil
}

func (c *Client) findPlaylist(ctx context.Context, name string) (string, error) {
	next := c.endpoint("/me/playlists", url.Values{"limit": {strconv.Itoa(maxPageSize)}})
	for next != "" {
		var page paging[playlistObject]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return "", err
		}
		for _, p := range page.Items {
			if p.Name == name {
				return p.ID, nil
			}
		}
		next = page.Next
	}
	return "", fmt.Errorf("%w: playlist %q", model.ErrNotFound, name)
}

// ReplacePlaylist overwrites the playlist with uris. The first batch replaces
// the content, later batches append, at most MaxPlaylistBatch URIs each.
func (c *Client) ReplacePlaylist(ctx context.Context, id string, uris []string) error {
	endpoint := c.endpoint("/playlists/"+url.PathEscape(id)+"/tracks", nil)

	method := http.MethodPut
	batches := 0
	for start := 0; start == 0 || start < len(uris); start += MaxPlaylistBatch {
		end := min(start+MaxPlaylistBatch, len(uris))
		body := struct {
			URIs []string `json:"uris"`
		}{URIs: append([]string{}, uris[start:end]...)}

		if err := c.sendJSON(ctx, method, endpoint, body); err != nil {
			return fmt.Errorf("write playlist %s batch %d: %w", id, batches, err)
		}
		method = http.MethodPost
		batches++
	}

	c.log.Info(ctx, "playlist replaced",
		logger.String("playlist", id),
		logger.Int("songs", len(uris)),
		logger.Int("batches", batches),
	)
	return nil
}
