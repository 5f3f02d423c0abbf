package searchengine

import "strings"

// domainStems is a small hand-curated table of domain vocabulary expansions
// (spec §4.2 step 8), consulted when a query prefix matches a known stem.
var domainStems = map[string][]string{
	"error":  {"error handling", "debugging", "troubleshooting"},
	"auth":   {"authentication", "authorization", "login flow"},
	"perf":   {"performance tuning", "profiling", "latency"},
	"test":   {"testing strategy", "unit tests", "integration tests"},
	"deploy": {"deployment", "rollout", "release process"},
	"cache":  {"caching strategy", "invalidation", "eviction policy"},
	"config": {"configuration", "environment variables", "settings"},
}

const maxSuggestions = 10

// buildSuggestions combines popular prior queries sharing the input prefix
// with curated domain-stem expansions, deduplicated and capped at
// maxSuggestions (spec §4.2 step 8).
func buildSuggestions(prefix string, metrics *queryMetrics) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	if metrics != nil {
		for _, q := range metrics.queriesWithPrefix(prefix, maxSuggestions) {
			add(q)
			if len(out) >= maxSuggestions {
				return out
			}
		}
	}

	for stem, expansions := range domainStems {
		if strings.HasPrefix(stem, prefix) || strings.HasPrefix(prefix, stem) {
			for _, e := range expansions {
				add(e)
				if len(out) >= maxSuggestions {
					return out
				}
			}
		}
	}

	return out
}

// extractKeywords returns up to n frequency-sorted stop-word-free keywords
// of at least minLen characters, used to seed searchSimilar's boolean-OR
// query from title+content.
func extractKeywords(text string, n, minLen int) []string {
	stop := stopwordSet()
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = trimPunct(w)
		if len(w) < minLen {
			continue
		}
		if _, isStop := stop[w]; isStop {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	// stable sort by frequency desc, first-seen order as tiebreak
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && counts[order[j]] > counts[order[j-1]] {
			order[j], order[j-1] = order[j-1], order[j]
			j--
		}
	}

	if n > 0 && len(order) > n {
		order = order[:n]
	}
	return order
}

func trimPunct(s string) string {
	return strings.Trim(s, ".,;:!?()[]{}\"'`")
}

func stopwordSet() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "is", "are", "was", "were",
		"in", "on", "at", "to", "for", "of", "with", "by", "from", "as",
		"that", "this", "these", "those", "it", "its", "be", "been", "being",
		"has", "have", "had", "not", "no", "so", "if", "then", "than", "do",
		"does", "did", "can", "could", "will", "would", "should", "may",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
