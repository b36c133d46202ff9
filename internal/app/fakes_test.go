package service_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/source"
)

type fakeMusic struct {
	mu         sync.Mutex
	songs      []model.Song
	related    map[string][]model.Relation
	relatedErr error
	releases   map[string][]model.Release
	playlists  map[string]source.Playlist
	catalogue  map[string]model.Release

	songPages    int
	releaseCalls []string
	written      map[string][]string
}

func (f *fakeMusic) SavedSongs(_ context.Context, cursor string) (source.Page[model.Song], error) {
	f.songPages++
	i := 0
	if cursor != "" {
		i, _ = strconv.Atoi(cursor)
	}
	if i >= len(f.songs) {
		return source.Page[model.Song]{}, nil
	}
	next := i + 1
	return source.Page[model.Song]{
		Items: []model.Song{f.songs[i]},
		Next:  strconv.Itoa(next),
		More:  next < len(f.songs),
	}, nil
}

func (f *fakeMusic) RelatedArtists(_ context.Context, id string) ([]model.Relation, error) {
	if f.relatedErr != nil {
		return nil, f.relatedErr
	}
	return f.related[id], nil
}

func (f *fakeMusic) RecentReleases(_ context.Context, id string, since time.Time) ([]model.Release, error) {
	f.mu.Lock()
	f.releaseCalls = append(f.releaseCalls, id)
	f.mu.Unlock()
	var out []model.Release
	for _, r := range f.releases[id] {
		if !r.ReleaseDate.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMusic) LoadPlaylist(_ context.Context, name string) (source.Playlist, error) {
	pl, ok := f.playlists[name]
	if !ok {
		return source.Playlist{}, fmt.Errorf("%w: playlist %q", model.ErrNotFound, name)
	}
	return pl, nil
}

func (f *fakeMusic) ReplacePlaylist(_ context.Context, id string, uris []string) error {
	if f.written == nil {
		f.written = map[string][]string{}
	}
	f.written[id] = append([]string{}, uris...)
	return nil
}

func (f *fakeMusic) ResolveRelease(_ context.Context, rel model.Release) (model.Release, error) {
	found, ok := f.catalogue[rel.ArtistName+"|"+rel.Name]
	if !ok {
		return rel, fmt.Errorf("%w: %s", model.ErrNotFound, rel.Name)
	}
	rel.URI = found.URI
	rel.SongURIs = found.SongURIs
	return rel, nil
}

type fakeCritics struct {
	pages  [][]model.Release
	genres map[string]string
	read   int
}

func (f *fakeCritics) NewReleases(_ context.Context, cursor string) (source.Page[model.Release], error) {
	i := 0
	if cursor != "" {
		i, _ = strconv.Atoi(cursor)
	}
	if i >= len(f.pages) {
		return source.Page[model.Release]{}, nil
	}
	f.read++
	items := append([]model.Release(nil), f.pages[i]...)
	return source.Page[model.Release]{Items: items, Next: strconv.Itoa(i + 1), More: i+1 < len(f.pages)}, nil
}

func (f *fakeCritics) Genres(_ context.Context, rel model.Release) (string, error) {
	return f.genres[rel.Name], nil
}

type fakeExporter struct {
	profile []model.TasteEntry
	lists   map[model.ReleaseKind][]model.Release
}

func (f *fakeExporter) WriteProfile(_ context.Context, entries []model.TasteEntry) error {
	f.profile = entries
	return nil
}

func (f *fakeExporter) WriteReleases(_ context.Context, kind model.ReleaseKind, rels []model.Release) error {
	if f.lists == nil {
		f.lists = map[model.ReleaseKind][]model.Release{}
	}
	f.lists[kind] = rels
	return nil
}
