package sentiment

import (
	"sort"

	"github.com/pscheid92/sentiscope/internal/domain"
)

// neutralFloor keeps a zero neutral score visible once positive or negative signal exists.
const neutralFloor = 0.1

// Distribution normalizes raw label scores into probabilities summing to 1,
// sorted descending. Equal scores keep POSITIVE, NEGATIVE, NEUTRAL order.
func Distribution(positive, negative, neutral float64) []domain.SentimentResult {
	if positive == 0 && negative == 0 && neutral == 0 {
		neutral = 1
	}
	if neutral == 0 {
		neutral = neutralFloor
	}

	total := positive + negative + neutral
	results := []domain.SentimentResult{
		{Label: domain.LabelPositive, Score: positive / total},
		{Label: domain.LabelNegative, Score: negative / total},
		{Label: domain.LabelNeutral, Score: neutral / total},
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
