package searchengine

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// queryWords splits and lowercases a query into its constituent words,
// dropping empties. Shared by relevance-factor computation, snippet
// generation, and matched-field detection.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// wordFraction returns the fraction of words that appear as a
// case-insensitive substring of text.
func wordFraction(words []string, text string) float64 {
	if len(words) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// titleMatch is 1.0 if the full query appears as a substring of title
// (case-insensitive), else the fraction of query words present in title.
func titleMatch(query string, words []string, title string) float64 {
	if query != "" && strings.Contains(strings.ToLower(title), strings.ToLower(query)) {
		return 1.0
	}
	return wordFraction(words, title)
}

// contentMatch mirrors titleMatch over the content field.
func contentMatch(query string, words []string, content string) float64 {
	if query != "" && strings.Contains(strings.ToLower(content), strings.ToLower(query)) {
		return 1.0
	}
	return wordFraction(words, content)
}

// tagMatch is the fraction of an entry's tags that contain any query word.
func tagMatch(words []string, tags []string) float64 {
	if len(tags) == 0 || len(words) == 0 {
		return 0
	}
	matched := 0
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, w := range words {
			if strings.Contains(lower, w) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tags))
}

// categoryMatch is 1.0 if the query text contains the entry's category,
// else 0.
func categoryMatch(query, category string) float64 {
	if category == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(query), strings.ToLower(category)) {
		return 1.0
	}
	return 0
}

// recencyBoost decays exponentially with days since last modification,
// active only when requested.
func recencyBoost(lastModified time.Time, boost bool) float64 {
	if !boost || lastModified.IsZero() {
		return 0
	}
	days := time.Since(lastModified).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / 30.0)
}

// effectivenessBoost passes the entry's effectiveness through when
// requested.
func effectivenessBoost(effectiveness float64, boost bool) float64 {
	if !boost {
		return 0
	}
	return effectiveness
}

// usageBoost is a log-dampened function of usage count, always computed
// and reported but not part of the weighted enhanced-score sum (spec §4.2
// step 4 names only title/content/tags/category/recency/effectiveness
// weights).
func usageBoost(usageCount int) float64 {
	return math.Log(float64(usageCount)+1) / 10.0
}

// computeRelevanceFactors builds the full RelevanceFactors for one entry
// against a query.
func computeRelevanceFactors(query string, words []string, e *indexstore.Entry, boostRecent, boostEffective bool) RelevanceFactors {
	return RelevanceFactors{
		TitleMatch:         titleMatch(query, words, e.Title),
		ContentMatch:       contentMatch(query, words, e.Content),
		TagMatch:           tagMatch(words, e.Tags),
		CategoryMatch:      categoryMatch(query, e.Category),
		RecencyBoost:       recencyBoost(e.LastModified, boostRecent),
		EffectivenessBoost: effectivenessBoost(e.Effectiveness, boostEffective),
		UsageBoost:         usageBoost(e.UsageCount),
	}
}

// enhancedScore blends the raw BM25 score with the weighted relevance
// factors (spec §4.2 step 4).
func enhancedScore(rawScore float64, f RelevanceFactors, w Weights) float64 {
	return rawScore +
		w.Title*f.TitleMatch +
		w.Content*f.ContentMatch +
		w.Tags*f.TagMatch +
		w.Category*f.CategoryMatch +
		w.Recency*f.RecencyBoost +
		w.Effectiveness*f.EffectivenessBoost
}

// matchedFields returns the set of {title, content, tags, category} fields
// that contain at least one query word, merged with anything Bleve's term
// locations already identified for the raw hit.
func matchedFields(words []string, e *indexstore.Entry, fromIndex []string) []string {
	set := make(map[string]struct{}, 4)
	for _, f := range fromIndex {
		set[f] = struct{}{}
	}
	if wordFraction(words, e.Title) > 0 {
		set[indexstore.FieldTitle] = struct{}{}
	}
	if wordFraction(words, e.Content) > 0 {
		set[indexstore.FieldContent] = struct{}{}
	}
	if tagMatch(words, e.Tags) > 0 {
		set[indexstore.FieldTags] = struct{}{}
	}
	if categoryMatch(strings.Join(words, " "), e.Category) > 0 {
		set[indexstore.FieldCategory] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
