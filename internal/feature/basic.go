package feature

import (
	"strings"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

func extractBasic(query string, words []string, entry *indexstore.Entry) BasicFeatures {
	return BasicFeatures{
		TitleMatchScore:   matchScore(query, words, entry.Title),
		ContentMatchScore: matchScore(query, words, entry.Content),
		TagMatchScore:     tagMatchScore(words, entry.Tags),
		CategoryMatch:     categoryMatch(query, entry.Category),
	}
}

// matchScore is 1.0 if query appears verbatim (case-insensitive) in text,
// else the fraction of query words present in text.
func matchScore(query string, words []string, text string) float64 {
	lower := strings.ToLower(text)
	if query != "" && strings.Contains(lower, strings.ToLower(query)) {
		return 1.0
	}
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func tagMatchScore(words []string, tags []string) float64 {
	if len(tags) == 0 || len(words) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tags {
		lt := strings.ToLower(t)
		for _, w := range words {
			if strings.Contains(lt, w) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(tags))
}

func categoryMatch(query, category string) bool {
	if category == "" {
		return false
	}
	return strings.Contains(strings.ToLower(query), strings.ToLower(category))
}
