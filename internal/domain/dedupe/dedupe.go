// Package dedupe tracks which releases are already in a target list.
//
// Releases match on the exact artist name and the exact release name;
// casing and whitespace differences are distinct releases.
package dedupe

import "context"

// Deduper records seen release keys.
type Deduper interface {
	// Seen reports whether key was recorded, without recording it.
	Seen(ctx context.Context, key string) bool
	// SeenAndRecord checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool
	Size() int64
}

// ReleaseKey builds the dedup key of a release.
func ReleaseKey(artistName, releaseName string) string {
	return artistName + "\x00" + releaseName
}

type inMemoryDeduper struct {
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a deduper pre-loaded with keys.
func NewInMemoryDeduper(keys ...string) Deduper {
	d := &inMemoryDeduper{seen: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		d.seen[k] = struct{}{}
	}
	return d
}

func (d *inMemoryDeduper) Seen(_ context.Context, key string) bool {
	_, ok := d.seen[key]
	return ok
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	return int64(len(d.seen))
}
