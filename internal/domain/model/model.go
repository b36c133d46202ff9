// Package model contains domain models passed between layers.
package model

import "time"

// Song is one liked song from the listener's library.
type Song struct {
	ID          string    `json:"id"`
	URI         string    `json:"uri"`
	Name        string    `json:"name"`
	ArtistID    string    `json:"artist_id"`
	ArtistName  string    `json:"artist_name"`
	ReleaseDate time.Time `json:"release_date"`
	AddedAt     time.Time `json:"added_at"`
}

// Relation is a (id, name) pair pointing at a related artist.
type Relation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistNode is a vertex of the related-artist graph.
// Populated is set once the relations were fetched, even when Related is empty.
type ArtistNode struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Related   []Relation `json:"related"`
	Populated bool       `json:"populated"`
}

// TasteEntry is the accumulated affinity for one artist.
type TasteEntry struct {
	ArtistID          string  `json:"artist_id"`
	ArtistName        string  `json:"artist_name"`
	Score             float64 `json:"score"`
	LikedSongCount    int     `json:"liked_song_count"`
	LikedRelatedCount int     `json:"liked_related_count"`
}

// ReleaseKind separates album and single lists.
type ReleaseKind string

const (
	KindAlbum  ReleaseKind = "album"
	KindSingle ReleaseKind = "single"
)

// ReleaseSource names the collaborator a candidate came from.
type ReleaseSource string

const (
	// SourcePrimary is the music service scan of tier 1 artists.
	SourcePrimary ReleaseSource = "primary"
	// SourceCritic is the critic-review site listing.
	SourceCritic ReleaseSource = "critic"
)

// Release is a newly discovered album or single.
type Release struct {
	Name        string        `json:"name"`
	ArtistName  string        `json:"artist_name"`
	ArtistID    string        `json:"artist_id,omitempty"`
	Kind        ReleaseKind   `json:"kind"`
	Source      ReleaseSource `json:"source"`
	ReleaseDate time.Time     `json:"release_date"`
	URI         string        `json:"uri,omitempty"`
	Link        string        `json:"link,omitempty"`
	Genres      string        `json:"genres,omitempty"`
	SongURIs    []string      `json:"song_uris,omitempty"`

	TasteScore   float64 `json:"taste_score"`
	CriticRating float64 `json:"critic_rating"`
	NumCritics   int     `json:"num_critics"`

	TasteScoreRank   int     `json:"taste_score_rank"`
	CriticRatingRank int     `json:"critic_rating_rank"`
	SortScore        float64 `json:"sort_score"`
	Removed          bool    `json:"removed"`
}
