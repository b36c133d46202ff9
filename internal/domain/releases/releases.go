// Package releases manages an accepted release list across runs.
package releases

import (
	"github.com/okian/soltify/internal/domain/dedupe"
	"github.com/okian/soltify/internal/domain/model"
)

// List is an ordered list of accepted releases of one kind.
type List struct {
	Kind     model.ReleaseKind
	Releases []model.Release
}

// NewList wraps saved releases.
func NewList(kind model.ReleaseKind, saved []model.Release) *List {
	return &List{Kind: kind, Releases: append([]model.Release(nil), saved...)}
}

// Add appends an admitted release.
func (l *List) Add(r model.Release) {
	r.Kind = l.Kind
	l.Releases = append(l.Releases, r)
}

// Keys returns the dedup keys of every release, removed ones included, so a
// release the listener deleted from the playlist is never re-admitted.
func (l *List) Keys() []string {
	keys := make([]string, len(l.Releases))
	for i, r := range l.Releases {
		keys[i] = dedupe.ReleaseKey(r.ArtistName, r.Name)
	}
	return keys
}

// MarkRemoved flags releases none of whose songs are still in the playlist.
// Releases without songs are left alone. It returns how many were flagged.
func (l *List) MarkRemoved(playlistURIs []string) int {
	inPlaylist := make(map[string]struct{}, len(playlistURIs))
	for _, uri := range playlistURIs {
		inPlaylist[uri] = struct{}{}
	}

	flagged := 0
	for i := range l.Releases {
		r := &l.Releases[i]
		if r.Removed || len(r.SongURIs) == 0 {
			continue
		}
		present := false
		for _, uri := range r.SongURIs {
			if _, ok := inPlaylist[uri]; ok {
				present = true
				break
			}
		}
		if !present {
			r.Removed = true
			flagged++
		}
	}
	return flagged
}

// PlaylistURIs returns the song URIs of non-removed releases in list order,
// each URI once.
func (l *List) PlaylistURIs() []string {
	seen := make(map[string]struct{})
	var uris []string
	for _, r := range l.Releases {
		if r.Removed {
			continue
		}
		for _, uri := range r.SongURIs {
			if _, ok := seen[uri]; ok {
				continue
			}
			seen[uri] = struct{}{}
			uris = append(uris, uri)
		}
	}
	return uris
}

// Counts returns the number of active and removed releases.
func (l *List) Counts() (active, removed int) {
	for _, r := range l.Releases {
		if r.Removed {
			removed++
		} else {
			active++
		}
	}
	return active, removed
}
