package fusion

// fuseRRF implements Reciprocal Rank Fusion: score(e) = Σ 1/(k+rank_i(e))
// over the lists e appears in, k default 60.
func (f *Fuser) fuseRRF(lists [][]RankedItem) []FusedResult {
	k := f.config.RRFConstant
	order, ranks, _ := candidateRanks(lists)

	results := make([]FusedResult, 0, len(order))
	for _, id := range order {
		sourceRanks := ranks[id]
		var score float64
		for _, r := range sourceRanks {
			if r > 0 {
				score += 1.0 / float64(k+r)
			}
		}
		results = append(results, FusedResult{
			ID:              id,
			Score:           score,
			AppearanceCount: appearanceCount(sourceRanks),
			SourceRanks:     sourceRanks,
		})
	}

	results = sortFused(results)
	normalizeScores(results)
	return results
}
