// Package types contains the row shapes of the human-readable exports.
package types

import (
	"strconv"

	"github.com/okian/soltify/internal/domain/model"
)

// ProfileRow is one line of the taste profile export.
type ProfileRow struct {
	Artist            string
	Score             string
	LikedSongCount    int
	LikedRelatedCount int
}

// ProfileHeader names the columns of ProfileRow.
var ProfileHeader = []string{"artist", "score", "liked_song_count", "liked_related_count"}

// NewProfileRow formats a taste entry. Scores keep three decimals.
func NewProfileRow(e model.TasteEntry) ProfileRow {
	return ProfileRow{
		Artist:            e.ArtistName,
		Score:             strconv.FormatFloat(e.Score, 'f', 3, 64),
		LikedSongCount:    e.LikedSongCount,
		LikedRelatedCount: e.LikedRelatedCount,
	}
}

// Record returns the row as CSV fields.
func (r ProfileRow) Record() []string {
	return []string{r.Artist, r.Score, strconv.Itoa(r.LikedSongCount), strconv.Itoa(r.LikedRelatedCount)}
}

// ReleaseRow is one line of a release list export.
type ReleaseRow struct {
	Rank         int
	Artist       string
	Name         string
	ReleaseDate  string
	TasteScore   string
	CriticRating string
	NumCritics   int
	SortScore    string
	Removed      bool
}

// ReleaseHeader names the columns of ReleaseRow.
var ReleaseHeader = []string{"rank", "artist", "name", "release_date", "taste_score", "critic_rating", "num_critics", "sort_score", "removed"}

// NewReleaseRow formats a ranked release at 1-based position rank.
func NewReleaseRow(rank int, r model.Release) ReleaseRow {
	return ReleaseRow{
		Rank:         rank,
		Artist:       r.ArtistName,
		Name:         r.Name,
		ReleaseDate:  r.ReleaseDate.Format("2006-01-02"),
		TasteScore:   strconv.FormatFloat(r.TasteScore, 'f', 3, 64),
		CriticRating: strconv.FormatFloat(r.CriticRating, 'f', 1, 64),
		NumCritics:   r.NumCritics,
		SortScore:    strconv.FormatFloat(r.SortScore, 'f', 2, 64),
		Removed:      r.Removed,
	}
}

// Record returns the row as CSV fields.
func (r ReleaseRow) Record() []string {
	return []string{
		strconv.Itoa(r.Rank), r.Artist, r.Name, r.ReleaseDate,
		r.TasteScore, r.CriticRating, strconv.Itoa(r.NumCritics), r.SortScore,
		strconv.FormatBool(r.Removed),
	}
}
