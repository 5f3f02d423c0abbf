package fusion

import (
	"strings"
)

var urgencyTerms = []string{"urgent", "critical", "fix"}

// PostFusionOptions configures the presentation-time adjustments applied
// after an algorithm produces a raw fused order.
type PostFusionOptions struct {
	Query     string
	ProjectID string // context.projectId, for the project-match boost

	// Strategy selects the near-tie reordering rule; empty disables it.
	Strategy string

	// DiversityPenaltyStep is the per-repeat same-category penalty within
	// the top window (default 0.01).
	DiversityPenaltyStep float64
	// DiversityWindow bounds how many leading results the diversity
	// penalty considers (default 10).
	DiversityWindow int

	// NearTieGap is the score gap within which the strategy-specific
	// reordering may swap two adjacent results (default 0.1).
	NearTieGap float64
}

func (o PostFusionOptions) withDefaults() PostFusionOptions {
	if o.DiversityPenaltyStep <= 0 {
		o.DiversityPenaltyStep = 0.01
	}
	if o.DiversityWindow <= 0 {
		o.DiversityWindow = 10
	}
	if o.NearTieGap <= 0 {
		o.NearTieGap = 0.1
	}
	return o
}

// ApplyPostFusion runs the diversity penalty, query boosts, and
// strategy-specific near-tie reordering over a fused order, then computes
// each result's confidence score. candidates must be keyed by FusedResult
// ID; results for IDs missing from candidates pass through unboosted.
func ApplyPostFusion(results []FusedResult, candidates map[string]PostFusionCandidate, opts PostFusionOptions) []FusedResult {
	opts = opts.withDefaults()

	applyDiversityPenalty(results, candidates, opts)
	applyQueryBoosts(results, candidates, opts)

	results = sortFused(results)
	if opts.Strategy != "" {
		reorderNearTies(results, candidates, opts)
	}

	computeConfidence(results, candidates)
	return results
}

func applyDiversityPenalty(results []FusedResult, candidates map[string]PostFusionCandidate, opts PostFusionOptions) {
	seenCategory := make(map[string]int)
	window := opts.DiversityWindow
	if window > len(results) {
		window = len(results)
	}
	for i := 0; i < window; i++ {
		cand, ok := candidates[results[i].ID]
		if !ok || cand.Category == "" {
			continue
		}
		occurrence := seenCategory[cand.Category]
		seenCategory[cand.Category] = occurrence + 1
		if occurrence > 0 {
			penalty := 1.0 - float64(occurrence)*opts.DiversityPenaltyStep
			if penalty < 0 {
				penalty = 0
			}
			results[i].Score *= penalty
		}
	}
}

func applyQueryBoosts(results []FusedResult, candidates map[string]PostFusionCandidate, opts PostFusionOptions) {
	queryHasUrgency := containsAny(strings.ToLower(opts.Query), urgencyTerms)

	for i := range results {
		cand, ok := candidates[results[i].ID]
		if !ok {
			continue
		}
		if queryHasUrgency && tagsIntersectTerms(cand.Tags, urgencyTerms) {
			results[i].Score *= 1.1
		}
		if opts.ProjectID != "" && cand.ProjectID == opts.ProjectID {
			results[i].Score += 0.05
		}
	}
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func tagsIntersectTerms(tags []string, terms []string) bool {
	for _, tag := range tags {
		lt := strings.ToLower(tag)
		for _, term := range terms {
			if lt == term {
				return true
			}
		}
	}
	return false
}

// reorderNearTies swaps adjacent results whose score gap is within
// NearTieGap when the configured strategy prefers the trailing one, e.g.
// recency-focused prefers a newer lastModified even at a slightly lower
// fused score.
func reorderNearTies(results []FusedResult, candidates map[string]PostFusionCandidate, opts PostFusionOptions) {
	prefer := strategyPreference(opts.Strategy)
	if prefer == nil {
		return
	}

	for i := 0; i+1 < len(results); i++ {
		gap := results[i].Score - results[i+1].Score
		if gap < 0 {
			gap = -gap
		}
		if gap > opts.NearTieGap {
			continue
		}
		a, okA := candidates[results[i].ID]
		b, okB := candidates[results[i+1].ID]
		if !okA || !okB {
			continue
		}
		if prefer(b, a) {
			results[i], results[i+1] = results[i+1], results[i]
		}
	}
	for i := range results {
		results[i].Rank = i + 1
	}
}

// strategyPreference returns a "b should rank before a" predicate for the
// named strategy, or nil if the strategy has no reordering rule.
func strategyPreference(strategy string) func(b, a PostFusionCandidate) bool {
	switch strategy {
	case "recency-focused":
		return func(b, a PostFusionCandidate) bool { return b.LastModified.After(a.LastModified) }
	case "effectiveness-focused":
		return func(b, a PostFusionCandidate) bool { return b.Effectiveness > a.Effectiveness }
	case "popularity-focused":
		return func(b, a PostFusionCandidate) bool { return b.UsageCount > a.UsageCount }
	default:
		return nil
	}
}

// computeConfidence scales each result's post-fusion score by a
// marker-count bonus (title matches count more than other fields) and a
// top-rank bonus.
func computeConfidence(results []FusedResult, candidates map[string]PostFusionCandidate) {
	for i := range results {
		cand, ok := candidates[results[i].ID]
		bonus := 1.0
		if ok {
			if cand.TitleMatched {
				bonus += 0.15
			}
			bonus += 0.02 * float64(cand.MatchedFields)
		}
		if results[i].Rank == 1 {
			bonus += 0.10
		}
		results[i].Confidence = results[i].Score * bonus
	}
}
