package fusion

// fuseBorda implements Borda count: score(e) = Σ (N_i − rank_i(e) + 1)
// over the lists e appears in, normalised to [0,1] and weighted by the
// fraction of lists the candidate appeared in (a candidate every list
// agrees on outranks one only a single list surfaced, even at an equal
// raw Borda score).
func (f *Fuser) fuseBorda(lists [][]RankedItem) []FusedResult {
	order, ranks, _ := candidateRanks(lists)
	listLens := make([]int, len(lists))
	for i, l := range lists {
		listLens[i] = len(l)
	}

	results := make([]FusedResult, 0, len(order))
	for _, id := range order {
		sourceRanks := ranks[id]
		var raw float64
		for li, r := range sourceRanks {
			if r > 0 {
				raw += float64(listLens[li] - r + 1)
			}
		}
		appearances := appearanceCount(sourceRanks)
		completeness := float64(appearances) / float64(len(lists))
		results = append(results, FusedResult{
			ID:              id,
			Score:           raw * completeness,
			AppearanceCount: appearances,
			SourceRanks:     sourceRanks,
		})
	}

	results = sortFused(results)
	normalizeScores(results)
	return results
}
