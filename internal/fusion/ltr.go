package fusion

import "math"

// fuseLTR scores every candidate with the configured linear model,
// squashed through a sigmoid. Candidates with no feature row available
// score 0 and sort last among ties.
func (f *Fuser) fuseLTR(lists [][]RankedItem, featuresByID map[string][]float64) []FusedResult {
	order, ranks, _ := candidateRanks(lists)
	model := f.config.Model

	results := make([]FusedResult, 0, len(order))
	for _, id := range order {
		sourceRanks := ranks[id]
		row := featuresByID[id]
		score := 0.0
		if row != nil {
			score = sigmoidScore(model, row)
		}
		results = append(results, FusedResult{
			ID:              id,
			Score:           score,
			AppearanceCount: appearanceCount(sourceRanks),
			SourceRanks:     sourceRanks,
		})
	}

	return sortFused(results)
}

func sigmoidScore(model *RankingModel, row []float64) float64 {
	var z float64
	n := len(model.Weights)
	if len(row) < n {
		n = len(row)
	}
	for i := 0; i < n; i++ {
		z += model.Weights[i] * row[i]
	}
	z += model.Bias
	return 1.0 / (1.0 + math.Exp(-z))
}
