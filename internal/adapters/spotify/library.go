package spotify

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/source"
	"github.com/okian/soltify/pkg/logger"
)

type savedTrack struct {
	AddedAt time.Time   `json:"added_at"`
	Track   trackObject `json:"track"`
}

// SavedSongs returns one page of liked songs, most recently added first.
func (c *Client) SavedSongs(ctx context.Context, cursor string) (source.Page[model.Song], error) {
	rawURL := cursor
	if rawURL == "" {
		rawURL = c.endpoint("/me/tracks", c.marketQuery(url.Values{"limit": {strconv.Itoa(maxPageSize)}}))
	}

	var page paging[savedTrack]
	if err := c.getJSON(ctx, rawURL, &page); err != nil {
		return source.Page[model.Song]{}, err
	}

	out := source.Page[model.Song]{
		Items: make([]model.Song, 0, len(page.Items)),
		Next:  page.Next,
		More:  page.Next != "",
	}
	for _, it := range page.Items {
		if it.Track.ID == "" {
			continue
		}
		out.Items = append(out.Items, c.song(ctx, it))
	}
	return out, nil
}

func (c *Client) song(ctx context.Context, it savedTrack) model.Song {
	s := model.Song{
		ID:      it.Track.ID,
		URI:     it.Track.URI,
		Name:    it.Track.Name,
		AddedAt: it.AddedAt,
	}
	if len(it.Track.Artists) > 0 {
		s.ArtistID = it.Track.Artists[0].ID
		s.ArtistName = it.Track.Artists[0].Name
	}
	released, err := ParseReleaseDate(it.Track.Album.ReleaseDate, it.Track.Album.ReleaseDatePrecision)
	if err != nil {
		// a zero date falls outside every age window
		c.log.Debug(ctx, "unparseable release date",
			logger.String("song", s.ID),
			logger.Error(err),
		)
	}
	s.ReleaseDate = released
	return s
}

// RelatedArtists returns the artists the service considers similar.
func (c *Client) RelatedArtists(ctx context.Context, artistID string) ([]model.Relation, error) {
	var resp struct {
		Artists []artistObject `json:"artists"`
	}
	if err := c.getJSON(ctx, c.endpoint("/artists/"+url.PathEscape(artistID)+"/related-artists", nil), &resp); err != nil {
		return nil, err
	}

	rel := make([]model.Relation, 0, len(resp.Artists))
	for _, a := range resp.Artists {
		rel = append(rel, model.Relation{ID: a.ID, Name: a.Name})
	}
	return rel, nil
}
