package fusion

import "sort"

// Fuse combines lists into one ranked output. featuresByID supplies the
// flattened feature row per candidate ID, required only for
// AlgorithmLTR. With a single input list, Fuse returns it unchanged
// (identity fusion), scores copied as-is.
func (f *Fuser) Fuse(lists [][]RankedItem, featuresByID map[string][]float64) ([]FusedResult, error) {
	if len(lists) == 0 {
		return []FusedResult{}, nil
	}
	if len(lists) == 1 {
		return identityFuse(lists[0]), nil
	}

	switch f.config.Algorithm {
	case AlgorithmBorda:
		return f.fuseBorda(lists), nil
	case AlgorithmWeighted:
		if len(f.config.Weights) != len(lists) {
			return nil, errWeightsRequired
		}
		return f.fuseWeighted(lists), nil
	case AlgorithmLTR:
		if f.config.Model == nil || len(f.config.Model.Weights) == 0 {
			return f.fuseRRF(lists), nil
		}
		return f.fuseLTR(lists, featuresByID), nil
	default:
		return f.fuseRRF(lists), nil
	}
}

func identityFuse(list []RankedItem) []FusedResult {
	out := make([]FusedResult, len(list))
	for i, item := range list {
		rank := i + 1
		out[i] = FusedResult{
			ID:              item.ID,
			Score:           item.Score,
			Rank:            rank,
			AppearanceCount: 1,
			SourceRanks:     []int{rank},
		}
	}
	return out
}

// candidateRanks collects, per candidate ID, its 1-indexed rank and score
// in every input list (0 rank means absent).
func candidateRanks(lists [][]RankedItem) (order []string, ranks map[string][]int, scores map[string][]float64) {
	ranks = make(map[string][]int)
	scores = make(map[string][]float64)
	seen := make(map[string]bool)

	ensure := func(id string) {
		if _, ok := ranks[id]; !ok {
			ranks[id] = make([]int, len(lists))
			scores[id] = make([]float64, len(lists))
		}
	}

	for li, list := range lists {
		for ri, item := range list {
			ensure(item.ID)
			ranks[item.ID][li] = ri + 1
			scores[item.ID][li] = item.Score
			if !seen[item.ID] {
				seen[item.ID] = true
				order = append(order, item.ID)
			}
		}
	}
	return order, ranks, scores
}

func appearanceCount(sourceRanks []int) int {
	n := 0
	for _, r := range sourceRanks {
		if r > 0 {
			n++
		}
	}
	return n
}

// sortFused orders by score desc, ties broken by appearance count desc
// then ID asc for determinism, and assigns 1..N ranks.
func sortFused(results []FusedResult) []FusedResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].AppearanceCount != results[j].AppearanceCount {
			return results[i].AppearanceCount > results[j].AppearanceCount
		}
		return results[i].ID < results[j].ID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func normalizeScores(results []FusedResult) {
	if len(results) == 0 {
		return
	}
	max := results[0].Score
	for _, r := range results {
		if r.Score > max {
			max = r.Score
		}
	}
	if max <= 0 {
		return
	}
	for i := range results {
		results[i].Score /= max
	}
}
