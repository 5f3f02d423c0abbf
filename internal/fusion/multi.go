package fusion

// SubQueryResult pairs a sub-query's weight with the ranked list C2
// returned for it, input to FuseMultiQuery.
type SubQueryResult struct {
	Weight float64
	List   []RankedItem
}

// MultiFusedResult extends FusedResult with the number of sub-queries
// that surfaced the candidate, used by the consensus boost.
type MultiFusedResult struct {
	FusedResult
	SubQueryHits int
}

// MultiQueryConfig configures FuseMultiQuery's RRF-with-consensus variant,
// which fuses several weighted sub-query lists for one logical query. The
// hybrid retriever does not call FuseMultiQuery; it fuses its arm lists
// through Fuser.
type MultiQueryConfig struct {
	RRFConstant int // 0 defaults to DefaultRRFConstant

	// ConsensusBoost scales the score of a candidate every additional
	// sub-query agrees on: score *= 1 + ConsensusBoost*(hits-1).
	ConsensusBoost float64
}

func (c MultiQueryConfig) withDefaults() MultiQueryConfig {
	if c.RRFConstant <= 0 {
		c.RRFConstant = DefaultRRFConstant
	}
	if c.ConsensusBoost <= 0 {
		c.ConsensusBoost = 0.1
	}
	return c
}

// FuseMultiQuery aggregates weighted RRF contributions from each
// sub-query's list, boosting candidates multiple sub-queries agree on.
func FuseMultiQuery(subResults []SubQueryResult, cfg MultiQueryConfig) []MultiFusedResult {
	cfg = cfg.withDefaults()
	if len(subResults) == 0 {
		return []MultiFusedResult{}
	}

	type acc struct {
		score float64
		hits  int
	}
	byID := make(map[string]*acc)
	var order []string

	for _, sub := range subResults {
		for rank, item := range sub.List {
			a, ok := byID[item.ID]
			if !ok {
				a = &acc{}
				byID[item.ID] = a
				order = append(order, item.ID)
			}
			weight := sub.Weight
			if weight <= 0 {
				weight = 1.0
			}
			a.score += weight / float64(cfg.RRFConstant+rank+1)
			a.hits++
		}
	}

	results := make([]MultiFusedResult, 0, len(order))
	for _, id := range order {
		a := byID[id]
		score := a.score
		if a.hits > 1 {
			score *= 1 + cfg.ConsensusBoost*float64(a.hits-1)
		}
		results = append(results, MultiFusedResult{
			FusedResult:  FusedResult{ID: id, Score: score, AppearanceCount: a.hits},
			SubQueryHits: a.hits,
		})
	}

	sortMultiFused(results)
	normalizeMultiFused(results)
	return results
}

func sortMultiFused(results []MultiFusedResult) {
	for i := range results {
		results[i].Rank = 0
	}
	// Insertion via the plain FusedResult comparator, extended with
	// SubQueryHits as an earlier tie-break than appearance count alone.
	n := len(results)
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && less(results[j], results[j-1]) {
			results[j], results[j-1] = results[j-1], results[j]
			j--
		}
	}
	for i := range results {
		results[i].Rank = i + 1
	}
}

func less(a, b MultiFusedResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.SubQueryHits != b.SubQueryHits {
		return a.SubQueryHits > b.SubQueryHits
	}
	return a.ID < b.ID
}

func normalizeMultiFused(results []MultiFusedResult) {
	if len(results) == 0 {
		return
	}
	max := results[0].Score
	if max <= 0 {
		return
	}
	for i := range results {
		results[i].Score /= max
	}
}
