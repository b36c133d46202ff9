package taste

import (
	"sort"
	"strings"

	"github.com/okian/soltify/internal/domain/model"
)

// Profile is the taste profile: one entry per artist id, kept in the order
// artists were first referenced. It is owned by one run and mutated in place.
type Profile struct {
	entries map[string]*model.TasteEntry
	order   []string
	byName  map[string]string
	byFold  map[string]string
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{
		entries: make(map[string]*model.TasteEntry),
		byName:  make(map[string]string),
		byFold:  make(map[string]string),
	}
}

// FromEntries rebuilds a profile from saved entries, keeping their order.
// Later duplicates of an artist id are ignored.
func FromEntries(entries []model.TasteEntry) *Profile {
	p := NewProfile()
	for _, e := range entries {
		if _, ok := p.entries[e.ArtistID]; ok {
			continue
		}
		cp := e
		p.insert(&cp)
	}
	return p
}

// Ensure returns the entry of artistID, creating it with zero counters on
// first reference. A missing name is filled in when one becomes known.
func (p *Profile) Ensure(artistID, artistName string) *model.TasteEntry {
	if e, ok := p.entries[artistID]; ok {
		if e.ArtistName == "" && artistName != "" {
			e.ArtistName = artistName
			p.indexName(e)
		}
		return e
	}
	e := &model.TasteEntry{ArtistID: artistID, ArtistName: artistName}
	p.insert(e)
	return e
}

// Get returns a copy of the entry of artistID.
func (p *Profile) Get(artistID string) (model.TasteEntry, bool) {
	e, ok := p.entries[artistID]
	if !ok {
		return model.TasteEntry{}, false
	}
	return *e, true
}

// LookupName finds an entry by artist name for collaborators that do not
// know artist ids. The exact name wins; otherwise a case-folded match is used.
func (p *Profile) LookupName(name string) (model.TasteEntry, bool) {
	if id, ok := p.byName[name]; ok {
		return *p.entries[id], true
	}
	if id, ok := p.byFold[strings.ToLower(name)]; ok {
		return *p.entries[id], true
	}
	return model.TasteEntry{}, false
}

// Len returns the number of artists in the profile.
func (p *Profile) Len() int {
	return len(p.order)
}

// Entries returns copies of all entries in first-reference order.
func (p *Profile) Entries() []model.TasteEntry {
	out := make([]model.TasteEntry, len(p.order))
	for i, id := range p.order {
		out[i] = *p.entries[id]
	}
	return out
}

// SortAndFilter drops entries with score <= threshold and orders the rest by
// descending score. Ties keep their profile order.
func SortAndFilter(p *Profile, threshold float64) []model.TasteEntry {
	all := p.Entries()
	kept := all[:0]
	for _, e := range all {
		if e.Score > threshold {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}

func (p *Profile) insert(e *model.TasteEntry) {
	p.entries[e.ArtistID] = e
	p.order = append(p.order, e.ArtistID)
	p.indexName(e)
}

func (p *Profile) indexName(e *model.TasteEntry) {
	if e.ArtistName == "" {
		return
	}
	if _, ok := p.byName[e.ArtistName]; !ok {
		p.byName[e.ArtistName] = e.ArtistID
	}
	fold := strings.ToLower(e.ArtistName)
	if _, ok := p.byFold[fold]; !ok {
		p.byFold[fold] = e.ArtistID
	}
}
