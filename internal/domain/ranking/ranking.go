// Package ranking orders accepted releases by a weighted composite of two
// dense ranks: taste score and critic rating.
package ranking

import (
	"sort"

	"github.com/okian/soltify/internal/domain/model"
)

// DenseRank ranks values from highest to lowest. Equal values share a rank
// and the next distinct value takes its 1-based position in sorted order,
// so [50, 50, 30] ranks as [1, 1, 3].
func DenseRank(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})

	ranks := make([]int, len(values))
	for pos, i := range idx {
		if pos > 0 && values[i] == values[idx[pos-1]] {
			ranks[i] = ranks[idx[pos-1]]
			continue
		}
		ranks[i] = pos + 1
	}
	return ranks
}

// RankAndSort fills in both ranks and the sort score of every release and
// returns them ordered: non-removed first, then by descending sort score.
// Ties keep their input order. The input slice is not modified.
func RankAndSort(releases []model.Release, weightTaste, weightCritic float64) []model.Release {
	out := append([]model.Release(nil), releases...)
	n := len(out)
	if n == 0 {
		return out
	}

	tasteScores := make([]float64, n)
	criticRatings := make([]float64, n)
	for i, r := range out {
		tasteScores[i] = r.TasteScore
		criticRatings[i] = r.CriticRating
	}
	tasteRanks := DenseRank(tasteScores)
	criticRanks := DenseRank(criticRatings)

	for i := range out {
		out[i].TasteScoreRank = tasteRanks[i]
		out[i].CriticRatingRank = criticRanks[i]
		out[i].SortScore = float64(n-tasteRanks[i])*weightTaste + float64(n-criticRanks[i])*weightCritic
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Removed != out[j].Removed {
			return !out[i].Removed
		}
		return out[i].SortScore > out[j].SortScore
	})

	return out
}
