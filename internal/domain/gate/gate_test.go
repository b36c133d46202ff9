package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/soltify/internal/domain/dedupe"
	"github.com/okian/soltify/internal/domain/gate"
	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/taste"
	"github.com/okian/soltify/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

type spyConfirmer struct {
	answer    bool
	err       error
	questions []string
}

func (s *spyConfirmer) Confirm(_ context.Context, q string) (bool, error) {
	s.questions = append(s.questions, q)
	return s.answer, s.err
}

type spyGenres struct {
	genres string
	err    error
	calls  int
}

func (s *spyGenres) Genres(_ context.Context, _ model.Release) (string, error) {
	s.calls++
	return s.genres, s.err
}

func policy() gate.Policy {
	return gate.Policy{
		Cutoffs:       tier.Cutoffs{T1: 75, T2: 30, T3: 10},
		CriticT3:      72,
		CriticT4:      82,
		MinCritics:    5,
		AllowedGenres: []string{"Indie Rock", "Folk"},
	}
}

func critic(artist, name string, rating float64, critics int) model.Release {
	return model.Release{ArtistName: artist, Name: name, Source: model.SourceCritic, CriticRating: rating, NumCritics: critics}
}

func TestEvaluateTiers(t *testing.T) {
	Convey("Given the default policy", t, func() {
		p := policy()

		Convey("When a tier 2 artist has no critic data", func() {
			v := gate.Evaluate(critic("A", "LP", 0, 0), 30, false, p)

			Convey("Then the release is admitted anyway", func() {
				So(v.Decision, ShouldEqual, gate.Admit)
				So(v.Reason, ShouldEqual, gate.ReasonTier2)
				So(v.Tier, ShouldEqual, tier.Tier2)
			})
		})

		Convey("When a tier 3 artist is evaluated", func() {
			Convey("Then it needs enough critics", func() {
				v := gate.Evaluate(critic("A", "LP", 90, 4), 15, false, p)
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonTooFewCritics)
			})

			Convey("Then it needs the tier 3 rating", func() {
				v := gate.Evaluate(critic("A", "LP", 71.9, 9), 15, false, p)
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonLowRating)
			})

			Convey("Then the genre does not matter", func() {
				v := gate.Evaluate(critic("A", "LP", 72, 5), 15, false, p)
				So(v.Decision, ShouldEqual, gate.Admit)
				So(v.Reason, ShouldEqual, gate.ReasonTier3Rating)
			})
		})

		Convey("When a baseline artist is evaluated", func() {
			Convey("Then the tier 4 rating is required", func() {
				rel := critic("A", "LP", 80, 20)
				rel.Genres = "Indie Rock"
				v := gate.Evaluate(rel, 0, false, p)
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonLowRating)
			})

			Convey("Then an allowed genre is required", func() {
				rel := critic("A", "LP", 85, 20)
				rel.Genres = "Dance Pop, Electropop"
				v := gate.Evaluate(rel, 0, false, p)
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonGenre)
			})

			Convey("Then a genre substring match admits", func() {
				rel := critic("A", "LP", 85, 20)
				rel.Genres = "Contemporary Folk, Singer-Songwriter"
				v := gate.Evaluate(rel, 0, false, p)
				So(v.Decision, ShouldEqual, gate.Admit)
				So(v.Reason, ShouldEqual, gate.ReasonBaselineRating)
			})

			Convey("Then genre matching is case-sensitive", func() {
				rel := critic("A", "LP", 85, 20)
				rel.Genres = "indie rock"
				v := gate.Evaluate(rel, 0, false, p)
				So(v.Reason, ShouldEqual, gate.ReasonGenre)
			})
		})

		Convey("When the release comes from the primary source", func() {
			rel := model.Release{ArtistName: "A", Name: "Single", Source: model.SourcePrimary}
			v := gate.Evaluate(rel, 80, false, p)

			Convey("Then tier rules are skipped", func() {
				So(v.Decision, ShouldEqual, gate.Admit)
				So(v.Reason, ShouldEqual, gate.ReasonPrimary)
				So(v.Tier, ShouldEqual, tier.Tier1)
			})
		})

		Convey("When the release is already known", func() {
			v := gate.Evaluate(critic("A", "LP", 99, 50), 100, true, p)

			Convey("Then it is rejected as a duplicate", func() {
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonDuplicate)
			})
		})
	})
}

func TestEvaluateFilters(t *testing.T) {
	Convey("Given a tier 2 release with a remaster keyword", t, func() {
		p := policy()
		rel := critic("A", "Song (Remastered)", 0, 0)

		Convey("When force filter is on", func() {
			p.ForceFilter = true
			v := gate.Evaluate(rel, 40, false, p)

			Convey("Then it is rejected by the remaster filter", func() {
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonFilter)
				So(v.Filter, ShouldEqual, gate.Remaster)
				So(v.Keyword, ShouldEqual, "remaster")
			})
		})

		Convey("When force filter is off", func() {
			v := gate.Evaluate(rel, 40, false, p)

			Convey("Then confirmation is needed", func() {
				So(v.Decision, ShouldEqual, gate.NeedsConfirmation)
				So(v.Filter, ShouldEqual, gate.Remaster)
			})
		})

		Convey("When remasters are allowed", func() {
			p.Allow[gate.Remaster] = true
			v := gate.Evaluate(rel, 40, false, p)

			Convey("Then the release passes", func() {
				So(v.Decision, ShouldEqual, gate.Admit)
				So(v.Filter, ShouldEqual, gate.NoFilter)
			})
		})
	})

	Convey("Given a name matching several filters", t, func() {
		name := "Heartbeats (Acoustic) [Live at KEXP] - Remix"

		Convey("When every filter is disabled", func() {
			f, kw, ok := gate.MatchFilter(name, gate.AllowFlags{})

			Convey("Then the first filter in order wins", func() {
				So(ok, ShouldBeTrue)
				So(f, ShouldEqual, gate.Live)
				So(kw, ShouldEqual, "[live")
			})
		})

		Convey("When live is allowed", func() {
			var allow gate.AllowFlags
			allow[gate.Live] = true
			f, _, ok := gate.MatchFilter(name, allow)

			Convey("Then the next disabled filter matches", func() {
				So(ok, ShouldBeTrue)
				So(f, ShouldEqual, gate.Acoustic)
			})
		})

		Convey("When every filter is allowed", func() {
			_, _, ok := gate.MatchFilter(name, gate.AllowFlags{true, true, true, true, true})

			Convey("Then nothing matches", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given filter names", t, func() {
		So(gate.Cover.String(), ShouldEqual, "cover")
		So(gate.NoFilter.String(), ShouldEqual, "none")
		So(gate.Remix.Keywords(), ShouldContain, "remix")
	})
}

func TestGateAdmit(t *testing.T) {
	Convey("Given a gate over a taste profile", t, func() {
		ctx := context.Background()
		profile := taste.NewProfile()
		profile.Ensure("fav", "Favourite").Score = 50
		profile.Ensure("mid", "Middling").Score = 12

		confirmer := &spyConfirmer{}
		genres := &spyGenres{genres: "Indie Rock, Slowcore"}
		known := dedupe.NewInMemoryDeduper(dedupe.ReleaseKey("Favourite", "Old LP"))
		g := gate.New(policy(), known, gate.WithConfirmer(confirmer), gate.WithGenreLookup(genres))

		Convey("When a critic release names a profile artist", func() {
			rel := critic("Favourite", "New LP", 0, 0)
			v, err := g.Admit(ctx, &rel, profile)

			Convey("Then the score and artist id are resolved by name", func() {
				So(err, ShouldBeNil)
				So(v.Decision, ShouldEqual, gate.Admit)
				So(rel.TasteScore, ShouldEqual, 50)
				So(rel.ArtistID, ShouldEqual, "fav")
			})

			Convey("And a second identical candidate is a duplicate", func() {
				again := critic("Favourite", "New LP", 0, 0)
				v2, err := g.Admit(ctx, &again, profile)
				So(err, ShouldBeNil)
				So(v2.Reason, ShouldEqual, gate.ReasonDuplicate)
			})
		})

		Convey("When a release is already in the list", func() {
			rel := critic("Favourite", "Old LP", 0, 0)
			v, _ := g.Admit(ctx, &rel, profile)

			Convey("Then it is not re-admitted", func() {
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Reason, ShouldEqual, gate.ReasonDuplicate)
			})
		})

		Convey("When a baseline release passes the critic checks", func() {
			rel := critic("Stranger", "Debut", 88, 12)
			v, err := g.Admit(ctx, &rel, profile)

			Convey("Then genres are fetched once and decide admission", func() {
				So(err, ShouldBeNil)
				So(genres.calls, ShouldEqual, 1)
				So(rel.Genres, ShouldEqual, "Indie Rock, Slowcore")
				So(v.Decision, ShouldEqual, gate.Admit)
				So(rel.TasteScore, ShouldEqual, 0)
			})
		})

		Convey("When a baseline release fails the critic checks", func() {
			rel := critic("Stranger", "Debut", 60, 12)
			v, _ := g.Admit(ctx, &rel, profile)

			Convey("Then no genre lookup happens", func() {
				So(genres.calls, ShouldEqual, 0)
				So(v.Reason, ShouldEqual, gate.ReasonLowRating)
			})
		})

		Convey("When the genre lookup fails", func() {
			genres.err = model.ErrUpstreamUnavailable
			rel := critic("Stranger", "Debut", 90, 12)
			_, err := g.Admit(ctx, &rel, profile)

			Convey("Then the error is returned", func() {
				So(errors.Is(err, model.ErrUpstreamUnavailable), ShouldBeTrue)
			})
		})

		Convey("When a filter matches and the listener confirms", func() {
			confirmer.answer = true
			rel := critic("Favourite", "Song (Remastered) [Live]", 0, 0)
			v, err := g.Admit(ctx, &rel, profile)

			Convey("Then it is rejected after exactly one question", func() {
				So(err, ShouldBeNil)
				So(v.Decision, ShouldEqual, gate.Reject)
				So(v.Filter, ShouldEqual, gate.Remaster)
				So(len(confirmer.questions), ShouldEqual, 1)
				So(known.Seen(ctx, dedupe.ReleaseKey("Favourite", "Song (Remastered) [Live]")), ShouldBeFalse)
			})
		})

		Convey("When a filter matches and the listener declines", func() {
			confirmer.answer = false
			rel := critic("Favourite", "Acoustic Sessions", 0, 0)
			v, err := g.Admit(ctx, &rel, profile)

			Convey("Then it is admitted", func() {
				So(err, ShouldBeNil)
				So(v.Decision, ShouldEqual, gate.Admit)
				So(v.Reason, ShouldEqual, gate.ReasonFilterDeclined)
				So(len(confirmer.questions), ShouldEqual, 1)
			})
		})

		Convey("When force filter is on", func() {
			p := policy()
			p.ForceFilter = true
			forced := gate.New(p, dedupe.NewInMemoryDeduper(), gate.WithConfirmer(confirmer))
			rel := critic("Favourite", "Song (Remastered)", 0, 0)
			v, err := forced.Admit(ctx, &rel, profile)

			Convey("Then nobody is asked", func() {
				So(err, ShouldBeNil)
				So(v.Decision, ShouldEqual, gate.Reject)
				So(confirmer.questions, ShouldBeEmpty)
			})
		})

		Convey("When confirmation is needed without a confirmer", func() {
			bare := gate.New(policy(), dedupe.NewInMemoryDeduper())
			rel := critic("Favourite", "Song (Remastered)", 0, 0)
			_, err := bare.Admit(ctx, &rel, profile)

			Convey("Then an error is returned", func() {
				So(errors.Is(err, gate.ErrNoConfirmer), ShouldBeTrue)
			})
		})

		Convey("When the prompt fails", func() {
			confirmer.err = errors.New("stdin closed")
			rel := critic("Favourite", "Song (Remastered)", 0, 0)
			_, err := g.Admit(ctx, &rel, profile)

			Convey("Then the error is wrapped", func() {
				So(errors.Is(err, gate.ErrConfirm), ShouldBeTrue)
			})
		})
	})
}
