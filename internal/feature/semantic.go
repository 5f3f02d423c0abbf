package feature

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

var (
	codeFenceRe = regexp.MustCompile("```")
	imageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)|<img\b`)
	urlRe       = regexp.MustCompile(`https?://[^\s)]+`)
	advancedRe  = regexp.MustCompile(`\b(goroutine|mutex|channel|generic|pointer|recursion|async|concurrency|algorithm|complexity)\b`)
)

func extractSemantic(entry *indexstore.Entry) SemanticFeatures {
	content := entry.Content

	return SemanticFeatures{
		Language:         entry.Language,
		ComplexityScore:  complexityScore(content),
		ReadabilityScore: readabilityScore(content),
		HasCodeExamples:  codeFenceRe.MatchString(content),
		HasImageDiagrams: imageRe.MatchString(content),
		HasExternalLinks: urlRe.MatchString(content),
		DocumentLength:   len([]rune(content)),
		TopicPurity:      topicPurity(content),
	}
}

// complexityScore is the density of advanced-construct vocabulary per 100
// words, capped at 1.0.
func complexityScore(content string) float64 {
	words := tokenize(strings.ToLower(content))
	if len(words) == 0 {
		return 0
	}
	hits := len(advancedRe.FindAllString(strings.ToLower(content), -1))
	score := float64(hits) / (float64(len(words)) / 100.0)
	if score > 1 {
		return 1
	}
	return score
}

// readabilityScore is a simplified inverse of sentence-length and
// word-length, favouring short sentences and short words.
func readabilityScore(content string) float64 {
	sentences := splitSentences(content)
	words := tokenize(content)
	if len(sentences) == 0 || len(words) == 0 {
		return 0.5
	}
	avgSentenceLen := float64(len(words)) / float64(len(sentences))
	var totalChars int
	for _, w := range words {
		totalChars += len([]rune(w))
	}
	avgWordLen := float64(totalChars) / float64(len(words))

	// Longer sentences/words reduce readability; clamp the inverse to [0,1].
	raw := 1.0 - (avgSentenceLen/40.0+avgWordLen/10.0)/2.0
	if raw < 0 {
		return 0
	}
	if raw > 1 {
		return 1
	}
	return raw
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}

// topicPurity is the Shannon entropy of the top-20 term distribution,
// inverted (lower entropy, i.e. a more concentrated vocabulary, means
// higher purity) and normalised to [0,1] against the maximum possible
// entropy for the number of terms kept (at most 20); a single distinct
// term scores 1.
func topicPurity(content string) float64 {
	words := tokenize(strings.ToLower(content))
	counts := make(map[string]int)
	for _, w := range words {
		if len(w) < 3 || isStopWord(w) {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return 0
	}

	type kv struct {
		term  string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for k, c := range counts {
		sorted = append(sorted, kv{k, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].term < sorted[j].term
	})
	if len(sorted) > 20 {
		sorted = sorted[:20]
	}

	top := make(map[string]int, len(sorted))
	for _, e := range sorted {
		top[e.term] = e.count
	}

	h := shannonEntropy(top)
	maxEntropy := logN(float64(len(top)))
	if maxEntropy == 0 {
		return 1
	}
	return 1 - h/maxEntropy
}

// logN is the natural log of n, matching shannonEntropy's base; 0 for n<=1.
func logN(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return math.Log(n)
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "with": {}, "this": {},
	"have": {}, "from": {}, "your": {}, "are": {}, "was": {}, "were": {},
	"not": {}, "but": {}, "can": {}, "all": {}, "any": {}, "has": {},
}
