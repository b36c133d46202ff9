// Package tier partitions the taste profile by score cutoffs.
package tier

import "github.com/okian/soltify/internal/domain/model"

// Tier is the admission policy bucket of an artist.
type Tier int

const (
	// Baseline artists are below every cutoff.
	Baseline Tier = iota
	// Tier3 releases need a good critic rating.
	Tier3
	// Tier2 releases from the critic source are admitted unconditionally.
	Tier2
	// Tier1 artists are also scanned on the primary music service.
	Tier1
)

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return "baseline"
	}
}

// Cutoffs are the minimum taste scores of each tier.
type Cutoffs struct {
	T1 float64
	T2 float64
	T3 float64
}

// IsTier1 reports whether the artist is scanned on the primary source.
func IsTier1(e model.TasteEntry, cutoffT1 float64) bool { return e.Score >= cutoffT1 }

// IsTier2 reports whether the artist's releases bypass critic checks.
func IsTier2(e model.TasteEntry, cutoffT2 float64) bool { return e.Score >= cutoffT2 }

// IsTier3 reports whether the artist's releases need the tier 3 rating.
func IsTier3(e model.TasteEntry, cutoffT3 float64) bool { return e.Score >= cutoffT3 }

// Classify returns the highest tier whose cutoff score reaches.
func Classify(score float64, c Cutoffs) Tier {
	e := model.TasteEntry{Score: score}
	switch {
	case IsTier1(e, c.T1):
		return Tier1
	case IsTier2(e, c.T2):
		return Tier2
	case IsTier3(e, c.T3):
		return Tier3
	default:
		return Baseline
	}
}

// Directive tells the pipeline where to look for an artist's releases.
type Directive struct {
	Artist model.TasteEntry
	Tier   Tier
	// Primary is set for artists scanned directly on the music service.
	Primary bool
}

// Directives classifies entries, keeping their order. Only artists at or
// above the tier 3 cutoff get a directive; everyone else is reached through
// the critic listing alone.
func Directives(entries []model.TasteEntry, c Cutoffs) []Directive {
	var out []Directive
	for _, e := range entries {
		t := Classify(e.Score, c)
		if t == Baseline {
			continue
		}
		out = append(out, Directive{Artist: e, Tier: t, Primary: t == Tier1})
	}
	return out
}

// Primary filters directives down to the primary-source scans.
func Primary(ds []Directive) []model.TasteEntry {
	var out []model.TasteEntry
	for _, d := range ds {
		if d.Primary {
			out = append(out, d.Artist)
		}
	}
	return out
}
