// internal/recommendation/ranking/ranking.go
package ranking

import (
	"sort"

	"magick-cards/internal/models"
)

// MaxResults bounds every recommendation list.
const MaxResults = 3

// Rank orders candidates by MatchScore, highest first, keeping catalog order
// among equal scores, and keeps at most MaxResults. The input is not modified.
func Rank(candidates []models.RecommendedBusiness) []models.RecommendedBusiness {
	return RankN(candidates, MaxResults)
}

// RankN is Rank with an explicit limit. A limit <= 0 keeps everything.
func RankN(candidates []models.RecommendedBusiness, limit int) []models.RecommendedBusiness {
	ranked := make([]models.RecommendedBusiness, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
