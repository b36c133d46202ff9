// Package source defines the collaborators the radar consumes and the
// pagination contract they share.
package source

import (
	"context"
	"time"

	"github.com/okian/soltify/internal/domain/model"
)

// Page is one batch of items from a paginated collaborator. More reports
// whether another page can be requested with Next.
type Page[T any] struct {
	Items []T
	Next  string
	More  bool
}

// Fetcher loads the page identified by cursor; the empty cursor is the first page.
type Fetcher[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Scan walks pages in order and hands every item to visit. It stops as soon
// as visit returns false or no more pages are available.
func Scan[T any](ctx context.Context, fetch Fetcher[T], visit func(T) bool) error {
	cursor := ""
	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			if !visit(item) {
				return nil
			}
		}
		if !page.More {
			return nil
		}
		cursor = page.Next
	}
}

// LikedSongs lists saved songs, newest added first.
type LikedSongs interface {
	SavedSongs(ctx context.Context, cursor string) (Page[model.Song], error)
}

// RelatedArtists returns the artists related to artistID.
type RelatedArtists interface {
	RelatedArtists(ctx context.Context, artistID string) ([]model.Relation, error)
}

// ArtistReleases returns the releases of one artist published on or after since.
type ArtistReleases interface {
	RecentReleases(ctx context.Context, artistID string, since time.Time) ([]model.Release, error)
}

// CriticReviews lists recently reviewed releases, newest first.
type CriticReviews interface {
	NewReleases(ctx context.Context, cursor string) (Page[model.Release], error)
	// Genres returns the comma separated genre string of a release.
	Genres(ctx context.Context, release model.Release) (string, error)
}

// Playlist is a named playlist and the URIs of its songs.
type Playlist struct {
	ID       string
	Name     string
	SongURIs []string
}

// Playlists reads and overwrites playlists.
type Playlists interface {
	// LoadPlaylist fails with model.ErrNotFound when no playlist has that name.
	LoadPlaylist(ctx context.Context, name string) (Playlist, error)
	ReplacePlaylist(ctx context.Context, id string, uris []string) error
}
