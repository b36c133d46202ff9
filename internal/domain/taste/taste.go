// Package taste builds the listener's taste profile from liked songs.
//
// Every liked song gives points to its artist and to each related artist.
// Points decay linearly for songs older than the decay age and vanish for
// songs older than the max age.
package taste

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/pkg/logger"
	"github.com/okian/soltify/pkg/metrics"
)

// Default scoring parameters.
const (
	defaultPtsLike       = 10.0
	defaultPtsRelated    = 0.5
	defaultDecayAgeYears = 5.0
	defaultMaxAgeYears   = 15.0

	daysPerYear = 365
)

// Relations resolves the related artists of an artist. *graph.Graph implements it.
type Relations interface {
	Related(ctx context.Context, artistID string) ([]model.Relation, error)
}

// Params holds the point values and age limits of the builder.
type Params struct {
	PtsLike    float64
	PtsRelated float64
	// PtsRelatedOfRelated enables a second propagation hop when > 0.
	PtsRelatedOfRelated float64
	DecayAgeYears       float64
	MaxAgeYears         float64
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithParams replaces the scoring parameters.
func WithParams(p Params) Option {
	return func(b *Builder) {
		b.params = p
	}
}

// WithClock overrides the time source used to place the decay window.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder updates taste profiles.
type Builder struct {
	relations Relations
	params    Params
	now       func() time.Time
	logger    logger.Logger
}

// NewBuilder creates a Builder resolving related artists through relations.
func NewBuilder(relations Relations, opts ...Option) *Builder {
	b := &Builder{
		relations: relations,
		params: Params{
			PtsLike:       defaultPtsLike,
			PtsRelated:    defaultPtsRelated,
			DecayAgeYears: defaultDecayAgeYears,
			MaxAgeYears:   defaultMaxAgeYears,
		},
		now:    time.Now,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// YearsBefore returns t moved back by years, counting 365 days per year.
func YearsBefore(t time.Time, years float64) time.Time {
	return t.Add(-time.Duration(years * daysPerYear * 24 * float64(time.Hour)))
}

// DecayFactor returns the share of points a song released at released earns.
// Songs on or after decayDate earn everything; older ones interpolate
// linearly down to zero at maxDate. A zero-width window means no decay.
func DecayFactor(released, maxDate, decayDate time.Time) float64 {
	if !released.Before(decayDate) {
		return 1
	}
	window := decayDate.Sub(maxDate)
	if window <= 0 {
		return 1
	}
	f := float64(released.Sub(maxDate)) / float64(window)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Window returns the max-age and decay-start dates for now.
func (b *Builder) Window(now time.Time) (maxDate, decayDate time.Time) {
	return YearsBefore(now, b.params.MaxAgeYears), YearsBefore(now, b.params.DecayAgeYears)
}

// Update adds the points of songs to profile. Songs older than the max age
// are skipped. A relation lookup failure aborts the update before the song's
// points are applied; songs processed earlier keep their points.
func (b *Builder) Update(ctx context.Context, profile *Profile, songs []model.Song) error {
	maxDate, decayDate := b.Window(b.now())

	var scored, tooOld int
	for _, song := range songs {
		if song.ReleaseDate.Before(maxDate) {
			tooOld++
			metrics.RecordLikedSongTooOld()
			continue
		}

		related, second, err := b.neighbours(ctx, song.ArtistID)
		if err != nil {
			return fmt.Errorf("score %q by %s: %w", song.Name, song.ArtistName, err)
		}

		decay := DecayFactor(song.ReleaseDate, maxDate, decayDate)

		artist := profile.Ensure(song.ArtistID, song.ArtistName)
		artist.Score += b.params.PtsLike * decay
		artist.LikedSongCount++

		for _, r := range related {
			e := profile.Ensure(r.ID, r.Name)
			e.Score += b.params.PtsRelated * decay
			e.LikedRelatedCount++
		}
		for _, r := range second {
			e := profile.Ensure(r.ID, r.Name)
			e.Score += b.params.PtsRelatedOfRelated * decay
		}

		scored++
		metrics.RecordLikedSongProcessed()
	}

	metrics.UpdateProfileArtists(profile.Len())
	b.logger.Info(ctx, "taste profile updated",
		logger.Int("songs", len(songs)),
		logger.Int("scored", scored),
		logger.Int("too_old", tooOld),
		logger.Int("artists", profile.Len()),
	)

	return nil
}

// neighbours resolves the first hop and, when enabled, the second hop.
func (b *Builder) neighbours(ctx context.Context, artistID string) ([]model.Relation, []model.Relation, error) {
	related, err := b.relations.Related(ctx, artistID)
	if err != nil {
		return nil, nil, err
	}
	if b.params.PtsRelatedOfRelated <= 0 {
		return related, nil, nil
	}

	var second []model.Relation
	for _, r := range related {
		rr, err := b.relations.Related(ctx, r.ID)
		if err != nil {
			return nil, nil, err
		}
		second = append(second, rr...)
	}
	return related, second, nil
}
