// Package gate decides which candidate releases enter the release lists.
//
// Evaluate is the pure decision. Gate wraps it with the side effects:
// dedup bookkeeping, lazy genre lookup and the confirmation prompt.
package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/soltify/internal/domain/dedupe"
	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/tier"
	"github.com/okian/soltify/pkg/logger"
	"github.com/okian/soltify/pkg/metrics"
)

// Decision is the outcome of evaluating one candidate.
type Decision int

const (
	Admit Decision = iota
	Reject
	NeedsConfirmation
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case Reject:
		return "reject"
	default:
		return "needs_confirmation"
	}
}

// Reason names the rule that produced a decision.
type Reason string

const (
	ReasonPrimary        Reason = "primary"
	ReasonTier2          Reason = "tier2"
	ReasonTier3Rating    Reason = "tier3_rating"
	ReasonBaselineRating Reason = "baseline_rating"
	ReasonDuplicate      Reason = "duplicate"
	ReasonTooFewCritics  Reason = "too_few_critics"
	ReasonLowRating      Reason = "low_rating"
	ReasonGenre          Reason = "genre"
	ReasonFilter         Reason = "filter"
	ReasonFilterDeclined Reason = "filter_declined"
	ReasonOutOfWindow    Reason = "out_of_window"
)

// Policy is the admission configuration.
type Policy struct {
	Cutoffs       tier.Cutoffs
	CriticT3      float64
	CriticT4      float64
	MinCritics    int
	AllowedGenres []string
	Allow         AllowFlags
	ForceFilter   bool
}

// Verdict is a decision plus the rule behind it.
type Verdict struct {
	Decision Decision
	Reason   Reason
	Tier     tier.Tier
	Filter   Filter
	Keyword  string
}

func verdict(d Decision, r Reason, t tier.Tier) Verdict {
	return Verdict{Decision: d, Reason: r, Tier: t, Filter: NoFilter}
}

// Evaluate decides on rel given the artist's taste score and whether the
// release is already in the target list.
//
// Tier rules only apply to candidates from the critic source. Content
// filters run afterwards; the first disallowed filter that matches decides,
// rejecting outright under ForceFilter and asking for confirmation otherwise.
func Evaluate(rel model.Release, score float64, known bool, p Policy) Verdict {
	t := tier.Classify(score, p.Cutoffs)
	if known {
		return verdict(Reject, ReasonDuplicate, t)
	}

	reason := ReasonPrimary
	if rel.Source == model.SourceCritic {
		v := admitTier(rel, score, t, p)
		if v.Decision != Admit {
			return v
		}
		reason = v.Reason
	}

	if f, kw, ok := MatchFilter(rel.Name, p.Allow); ok {
		v := Verdict{Decision: NeedsConfirmation, Reason: ReasonFilter, Tier: t, Filter: f, Keyword: kw}
		if p.ForceFilter {
			v.Decision = Reject
		}
		return v
	}

	return verdict(Admit, reason, t)
}

func admitTier(rel model.Release, score float64, t tier.Tier, p Policy) Verdict {
	entry := model.TasteEntry{Score: score}
	switch {
	case tier.IsTier2(entry, p.Cutoffs.T2):
		return verdict(Admit, ReasonTier2, t)
	case tier.IsTier3(entry, p.Cutoffs.T3):
		if rel.NumCritics < p.MinCritics {
			return verdict(Reject, ReasonTooFewCritics, t)
		}
		if rel.CriticRating < p.CriticT3 {
			return verdict(Reject, ReasonLowRating, t)
		}
		return verdict(Admit, ReasonTier3Rating, t)
	default:
		if rel.NumCritics < p.MinCritics {
			return verdict(Reject, ReasonTooFewCritics, t)
		}
		if rel.CriticRating < p.CriticT4 {
			return verdict(Reject, ReasonLowRating, t)
		}
		if !genreAllowed(rel.Genres, p.AllowedGenres) {
			return verdict(Reject, ReasonGenre, t)
		}
		return verdict(Admit, ReasonBaselineRating, t)
	}
}

// NeedsGenres reports whether the genre string of rel decides its admission
// and is not known yet.
func NeedsGenres(rel model.Release, score float64, p Policy) bool {
	if rel.Source != model.SourceCritic || rel.Genres != "" {
		return false
	}
	entry := model.TasteEntry{Score: score}
	if tier.IsTier3(entry, p.Cutoffs.T3) || tier.IsTier2(entry, p.Cutoffs.T2) {
		return false
	}
	return rel.NumCritics >= p.MinCritics && rel.CriticRating >= p.CriticT4
}

func genreAllowed(genres string, allowed []string) bool {
	for _, g := range allowed {
		if g != "" && strings.Contains(genres, g) {
			return true
		}
	}
	return false
}

// Confirmer asks the listener a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// GenreLookup fetches the genre string of a release.
type GenreLookup interface {
	Genres(ctx context.Context, rel model.Release) (string, error)
}

// Profile resolves taste entries by artist id or name. *taste.Profile implements it.
type Profile interface {
	Get(artistID string) (model.TasteEntry, bool)
	LookupName(name string) (model.TasteEntry, bool)
}

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithConfirmer sets the prompt used for filter matches.
func WithConfirmer(c Confirmer) Option {
	return func(g *Gate) {
		g.confirmer = c
	}
}

// WithGenreLookup sets the genre source for baseline critic candidates.
func WithGenreLookup(l GenreLookup) Option {
	return func(g *Gate) {
		g.genres = l
	}
}

// WithLogger sets the gate logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// Gate admits releases into one target list.
type Gate struct {
	policy    Policy
	known     dedupe.Deduper
	confirmer Confirmer
	genres    GenreLookup
	logger    logger.Logger
}

// New creates a Gate whose dedup index is known.
func New(policy Policy, known dedupe.Deduper, opts ...Option) *Gate {
	g := &Gate{
		policy: policy,
		known:  known,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Admit evaluates rel against profile. The release's TasteScore and, when
// resolved by name, its ArtistID are filled in. Admitted releases are
// recorded so a second candidate with the same artist and name is rejected.
func (g *Gate) Admit(ctx context.Context, rel *model.Release, profile Profile) (Verdict, error) {
	metrics.RecordReleaseCandidate(string(rel.Source))

	score := g.resolveScore(rel, profile)
	key := dedupe.ReleaseKey(rel.ArtistName, rel.Name)
	known := g.known.Seen(ctx, key)

	if !known && g.genres != nil && NeedsGenres(*rel, score, g.policy) {
		genres, err := g.genres.Genres(ctx, *rel)
		if err != nil {
			return Verdict{}, fmt.Errorf("genres of %q by %s: %w", rel.Name, rel.ArtistName, err)
		}
		rel.Genres = genres
	}

	v := Evaluate(*rel, score, known, g.policy)

	if v.Decision == NeedsConfirmation {
		if g.confirmer == nil {
			return v, ErrNoConfirmer
		}
		question := fmt.Sprintf("%q by %s looks like a %s release (matched %q). Filter it out?",
			rel.Name, rel.ArtistName, v.Filter, strings.TrimSpace(v.Keyword))
		confirmed, err := g.confirmer.Confirm(ctx, question)
		if err != nil {
			return v, fmt.Errorf("%w: %w", ErrConfirm, err)
		}
		if confirmed {
			v.Decision = Reject
		} else {
			v.Decision = Admit
			v.Reason = ReasonFilterDeclined
		}
	}

	fields := []logger.Field{
		logger.String("artist", rel.ArtistName),
		logger.String("release", rel.Name),
		logger.String("source", string(rel.Source)),
		logger.String("tier", v.Tier.String()),
		logger.String("reason", string(v.Reason)),
		logger.Float64("taste_score", score),
	}
	if v.Filter != NoFilter {
		fields = append(fields, logger.String("filter", v.Filter.String()))
	}

	if v.Decision == Admit {
		g.known.SeenAndRecord(ctx, key)
		metrics.RecordReleaseAdmitted(string(rel.Source), string(v.Reason))
		g.logger.Info(ctx, "release admitted", fields...)
	} else {
		metrics.RecordReleaseRejected(string(v.Reason))
		g.logger.Debug(ctx, "release rejected", fields...)
	}

	return v, nil
}

func (g *Gate) resolveScore(rel *model.Release, profile Profile) float64 {
	if rel.ArtistID != "" {
		if e, ok := profile.Get(rel.ArtistID); ok {
			rel.TasteScore = e.Score
			return e.Score
		}
	}
	if e, ok := profile.LookupName(rel.ArtistName); ok {
		if rel.ArtistID == "" {
			rel.ArtistID = e.ArtistID
		}
		rel.TasteScore = e.Score
		return e.Score
	}
	rel.TasteScore = 0
	return 0
}
