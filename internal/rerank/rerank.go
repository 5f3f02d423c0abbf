package rerank

import (
	"math"
	"sort"
)

// Rerank scores every candidate with the current model and returns them
// sorted descending, ranks rewritten 1..N. A disabled reranker is a no-op:
// it returns the input order unchanged with rankerUsed=base. Given the
// same (weights, bias) and candidate order, output is deterministic.
func (r *Reranker) Rerank(candidates []Candidate) []Result {
	if !r.config.Enabled {
		out := make([]Result, len(candidates))
		for i, c := range candidates {
			out[i] = Result{ID: c.ID, Score: c.Score, Rank: i + 1, RankerUsed: RankerBase}
		}
		return out
	}

	weights := r.Weights()
	bias := r.Bias()

	out := make([]Result, len(candidates))
	for i, c := range candidates {
		out[i] = Result{
			ID:         c.ID,
			Score:      sigmoid(dot(weights, c.Features) + bias),
			RankerUsed: RankerML,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(weights, features []float64) float64 {
	n := len(weights)
	if len(features) < n {
		n = len(features)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += weights[i] * features[i]
	}
	return sum
}
