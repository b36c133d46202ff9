package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/pkg/logger"
)

const searchLimit = 10

// RecentReleases returns the albums and singles of artistID released on or
// after since, each with the URIs of its songs.
func (c *Client) RecentReleases(ctx context.Context, artistID string, since time.Time) ([]model.Release, error) {
	q := c.marketQuery(url.Values{
		"include_groups": {"album,single"},
		"limit":          {strconv.Itoa(maxPageSize)},
	})
	next := c.endpoint("/artists/"+url.PathEscape(artistID)+"/albums", q)

	var out []model.Release
	for next != "" {
		var page paging[albumObject]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		next = page.Next

		for _, a := range page.Items {
			released, err := ParseReleaseDate(a.ReleaseDate, a.ReleaseDatePrecision)
			if err != nil {
				c.log.Debug(ctx, "skipping release with bad date", logger.String("album", a.ID), logger.Error(err))
				continue
			}
			if released.Before(since) {
				continue
			}

			rel := c.release(a, released)
			rel.ArtistID = artistID
			if rel.SongURIs, err = c.albumTracks(ctx, a.ID); err != nil {
				return nil, err
			}
			out = append(out, rel)
		}
	}
	return out, nil
}

// ResolveRelease finds a release by artist and name in the catalogue and
// fills in its URI, artist id and song URIs. A release the catalogue does not
// carry yields an error wrapping model.ErrNotFound.
func (c *Client) ResolveRelease(ctx context.Context, rel model.Release) (model.Release, error) {
	q := c.marketQuery(url.Values{
		"q":     {fmt.Sprintf("album:%s artist:%s", rel.Name, rel.ArtistName)},
		"type":  {"album"},
		"limit": {strconv.Itoa(searchLimit)},
	})
	var resp struct {
		Albums paging[albumObject] `json:"albums"`
	}
	if err := c.getJSON(ctx, c.endpoint("/search", q), &resp); err != nil {
		return rel, err
	}

	for _, a := range resp.Albums.Items {
		if !strings.EqualFold(a.Name, rel.Name) || len(a.Artists) == 0 || !strings.EqualFold(a.Artists[0].Name, rel.ArtistName) {
			continue
		}
		uris, err := c.albumTracks(ctx, a.ID)
		if err != nil {
			return rel, err
		}
		rel.URI = a.URI
		rel.SongURIs = uris
		if rel.ArtistID == "" {
			rel.ArtistID = a.Artists[0].ID
		}
		return rel, nil
	}
	return rel, fmt.Errorf("%w: %s - %s", model.ErrNotFound, rel.ArtistName, rel.Name)
}

func (c *Client) release(a albumObject, released time.Time) model.Release {
	rel := model.Release{
		Name:        a.Name,
		Kind:        model.KindAlbum,
		Source:      model.SourcePrimary,
		ReleaseDate: released,
		URI:         a.URI,
		Link:        a.ExternalURLs.Spotify,
	}
	group := a.AlbumGroup
	if group == "" {
		group = a.AlbumType
	}
	if group == "single" {
		rel.Kind = model.KindSingle
	}
	if len(a.Artists) > 0 {
		rel.ArtistName = a.Artists[0].Name
	}
	return rel
}

func (c *Client) albumTracks(ctx context.Context, albumID string) ([]string, error) {
	next := c.endpoint("/albums/"+url.PathEscape(albumID)+"/tracks", c.marketQuery(url.Values{"limit": {strconv.Itoa(maxPageSize)}}))

	var uris []string
	for next != "" {
		var page paging[trackObject]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, t := range page.Items {
			uris = append(uris, t.URI)
		}
		next = page.Next
	}
	return uris, nil
}
