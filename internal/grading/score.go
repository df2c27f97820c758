package grading

import (
	"math"

	"github.com/dryrunhq/dryrun/internal/stage"
)

// neutralScore substitutes for a missing criterion score so the criterion
// still contributes its weight to the denominator. Preserved as observed
// behavior; see DESIGN.md before "fixing" this.
const neutralScore = 5

// WeightedScore computes round(sum(score*weight)/sum(weight), 1) over the
// configured criteria.
func WeightedScore(criteria []stage.Criterion, scores map[string]float64) float64 {
	var weightedSum, weightSum float64
	for _, crit := range criteria {
		score, ok := scores[crit.Name]
		if !ok {
			score = neutralScore
		}
		weightedSum += score * crit.Weight
		weightSum += crit.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return math.Round(weightedSum/weightSum*10) / 10
}
