package retriever

import (
	"github.com/kestrel-labs/knowledgeforge/internal/bandit"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

// strategyPlan is what one arm contributes to a C2 search call: custom
// weights, presentation boosts, and whether this arm also wants a
// vector-search pass merged in (vector-heavy, semantic-focused).
type strategyPlan struct {
	weights    searchengine.Weights
	boostRecent, boostEffective bool
	useVector  bool
}

// planFor chooses C2 weights and filters for one arm, per the retrieval
// stage's "build a C2 search from s" step: each arm emphasises a
// different Weights field (or turns on a presentation boost or the
// vector pass) so that
// the bandit's choice of arm actually changes what comes back.
func planFor(arm bandit.Arm) strategyPlan {
	w := searchengine.DefaultWeights
	switch arm {
	case bandit.ArmFTSHeavy:
		w.Title *= 1.5
		w.Content *= 1.5
		return strategyPlan{weights: w}
	case bandit.ArmVectorHeavy:
		return strategyPlan{weights: w, useVector: true}
	case bandit.ArmRecencyFocused:
		w.Recency *= 4
		return strategyPlan{weights: w, boostRecent: true}
	case bandit.ArmEffectivenessFocused:
		w.Effectiveness *= 4
		return strategyPlan{weights: w, boostEffective: true}
	case bandit.ArmPopularityFocused:
		w.Effectiveness *= 2
		w.Recency *= 2
		return strategyPlan{weights: w, boostEffective: true, boostRecent: true}
	case bandit.ArmSemanticFocused:
		w.Tags *= 2
		w.Category *= 2
		return strategyPlan{weights: w, useVector: true}
	default: // balanced
		return strategyPlan{weights: w}
	}
}
