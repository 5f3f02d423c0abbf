package fusion

const weightedAlpha = 0.5

// fuseWeighted implements the weighted-combination algorithm: given
// per-list weights (renormalised to sum 1), score(e) =
// Σ w_i · (α·normalizedScore_i + (1−α)·position_i), α=0.5. A list a
// candidate is absent from contributes 0 for that term.
func (f *Fuser) fuseWeighted(lists [][]RankedItem) []FusedResult {
	weights := normalizeWeights(f.config.Weights)
	order, ranks, scores := candidateRanks(lists)

	maxScores := make([]float64, len(lists))
	for li, list := range lists {
		for _, item := range list {
			if item.Score > maxScores[li] {
				maxScores[li] = item.Score
			}
		}
	}

	results := make([]FusedResult, 0, len(order))
	for _, id := range order {
		sourceRanks := ranks[id]
		sourceScores := scores[id]
		var total float64
		for li := range lists {
			r := sourceRanks[li]
			if r == 0 {
				continue
			}
			var normalizedScore float64
			if maxScores[li] > 0 {
				normalizedScore = sourceScores[li] / maxScores[li]
			}
			position := 0.0
			if n := len(lists[li]); n > 1 {
				position = 1.0 - float64(r-1)/float64(n-1)
			} else {
				position = 1.0
			}
			total += weights[li] * (weightedAlpha*normalizedScore + (1-weightedAlpha)*position)
		}
		results = append(results, FusedResult{
			ID:              id,
			Score:           total,
			AppearanceCount: appearanceCount(sourceRanks),
			SourceRanks:     sourceRanks,
		})
	}

	results = sortFused(results)
	normalizeScores(results)
	return results
}

func normalizeWeights(weights []float64) []float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		uniform := 1.0 / float64(len(weights))
		out := make([]float64, len(weights))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / sum
	}
	return out
}
