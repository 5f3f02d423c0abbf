package feature

import (
	"strings"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

func extractAffinity(qctx QueryContext, entry *indexstore.Entry) AffinityFeatures {
	var hist UserInteraction
	if qctx.UserHistory != nil {
		hist = qctx.UserHistory[entry.ID]
	}

	return AffinityFeatures{
		UserPreviousInteractions: hist.Count,
		UserSuccessRate:          hist.SuccessRate,
		UserDwellTime:            hist.DwellTime,

		AgentTypeRelevance:  agentTypeRelevance(qctx.AgentTypes, entry.AgentTypes),
		AgentSuccessHistory: entry.SuccessRate,

		ProjectRelevance:  projectRelevance(qctx.ProjectID, entry),
		CrossProjectUsage: crossProjectUsage(entry),

		LanguagePreference: languagePreference(qctx.PreferredLanguages, entry.Language),
		ComplexityFit:      complexityFit(qctx.ExpertiseLevel, entry.Difficulty),
		DomainFit:          domainFit(qctx, entry),
	}
}

// agentTypeRelevance is the fraction of the query's agent types also
// present on the entry.
func agentTypeRelevance(queryTypes, entryTypes []string) float64 {
	if len(queryTypes) == 0 {
		return 0
	}
	set := make(map[string]bool, len(entryTypes))
	for _, t := range entryTypes {
		set[strings.ToLower(t)] = true
	}
	hits := 0
	for _, t := range queryTypes {
		if set[strings.ToLower(t)] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTypes))
}

// projectRelevance is 1.0 for an exact project match, decaying to 0.5 for
// a global-scope entry (still usable cross-project) and 0 otherwise.
func projectRelevance(queryProject string, entry *indexstore.Entry) float64 {
	if queryProject == "" {
		return 0
	}
	if queryProject == entry.ProjectID {
		return 1.0
	}
	if entry.Scope == indexstore.ScopeGlobal {
		return 0.5
	}
	return 0
}

func crossProjectUsage(entry *indexstore.Entry) float64 {
	if entry.Scope == indexstore.ScopeGlobal {
		return 1.0
	}
	return 0
}

func languagePreference(preferred []string, lang string) float64 {
	if lang == "" {
		return 0
	}
	for _, p := range preferred {
		if strings.EqualFold(p, lang) {
			return 1.0
		}
	}
	return 0
}

func complexityFit(expertise string, difficulty indexstore.Difficulty) float64 {
	rank := func(s string) int {
		switch strings.ToLower(s) {
		case "low":
			return 0
		case "medium":
			return 1
		case "high":
			return 2
		default:
			return -1
		}
	}
	eRank := rank(expertise)
	dRank := rank(string(difficulty))
	if eRank < 0 || dRank < 0 {
		return 0.5
	}
	gap := eRank - dRank
	if gap < 0 {
		gap = -gap
	}
	switch gap {
	case 0:
		return 1.0
	case 1:
		return 0.5
	default:
		return 0.0
	}
}

func domainFit(qctx QueryContext, entry *indexstore.Entry) float64 {
	if len(qctx.IssueLabels) == 0 {
		return 0
	}
	set := make(map[string]bool, len(entry.Tags))
	for _, t := range entry.Tags {
		set[strings.ToLower(t)] = true
	}
	hits := 0
	for _, l := range qctx.IssueLabels {
		if set[strings.ToLower(l)] {
			hits++
		}
	}
	return float64(hits) / float64(len(qctx.IssueLabels))
}
