package feature

import "math"

// deriveFeatures computes the derived summary layer from the other six
// categories. uncertaintyScore reflects how thin the evidence is (it falls
// as the caller's recorded interactions with the entry grow); noveltyScore favors entries
// the caller's history has not yet seen.
func deriveFeatures(v *Vector, w DerivedWeights) DerivedFeatures {
	categoryScores := map[string]float64{
		"title":     v.Basic.TitleMatchScore,
		"content":   v.Basic.ContentMatchScore,
		"proximity": (v.Proximity.WordOverlapRatio + v.Proximity.CosineSimilarity + v.Proximity.JaccardSimilarity) / 3,
		"recency":   v.Recency.ModifiedDecay,
		"affinity":  (v.Affinity.UserSuccessRate + v.Affinity.AgentTypeRelevance + v.Affinity.ProjectRelevance) / 3,
		"semantic":  v.Semantic.TopicPurity,
		"context":   v.Context.IssueRelevance,
	}
	weights := map[string]float64{
		"title":     w.Title,
		"content":   w.Content,
		"proximity": w.Proximity,
		"recency":   w.Recency,
		"affinity":  w.Affinity,
		"semantic":  w.Semantic,
		"context":   w.Context,
	}

	var weightedSum, weightTotal float64
	for k, s := range categoryScores {
		weightedSum += weights[k] * s
		weightTotal += weights[k]
	}
	overall := 0.0
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}

	uncertainty := 1.0
	if v.Affinity.UserPreviousInteractions > 0 {
		uncertainty = 1.0 / (1.0 + float64(v.Affinity.UserPreviousInteractions))
	}

	novelty := 1.0
	if v.Affinity.UserPreviousInteractions > 0 {
		novelty = math.Exp(-float64(v.Affinity.UserPreviousInteractions) / 5.0)
	}

	return DerivedFeatures{
		OverallRelevance: clamp01(overall),
		UncertaintyScore: clamp01(uncertainty),
		NoveltyScore:     clamp01(novelty),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
