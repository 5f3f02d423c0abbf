package feature

import (
	"math"
	"strings"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

func extractProximity(query string, words []string, entry *indexstore.Entry) ProximityFeatures {
	content := strings.ToLower(entry.Content)
	title := strings.ToLower(entry.Title)

	return ProximityFeatures{
		ExactPhraseMatch:    query != "" && strings.Contains(content, strings.ToLower(query)),
		WordOverlapRatio:    wordOverlapRatio(words, content),
		CharacterSimilarity: characterSimilarity(strings.ToLower(query), title),
		CosineSimilarity:    cosineSimilarity(words, content),
		JaccardSimilarity:   jaccardSimilarity(words, tokenize(content)),

		TitleProximity:   fieldProximity(words, title),
		ContentProximity: fieldProximity(words, content),
		TagsProximity:    tagMatchScore(words, entry.Tags),
		PathProximity:    fieldProximity(words, strings.ToLower(entry.Path)),

		HierarchyDistance: hierarchyDistance(entry.Path),
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
}

func wordOverlapRatio(words []string, text string) float64 {
	if len(words) == 0 {
		return 0
	}
	tokens := make(map[string]bool)
	for _, t := range tokenize(text) {
		tokens[strings.ToLower(t)] = true
	}
	hits := 0
	for _, w := range words {
		if tokens[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func fieldProximity(words []string, text string) float64 {
	return wordOverlapRatio(words, text)
}

// characterSimilarity is a bigram-overlap ratio (Sørensen–Dice on
// character bigrams), bounded to [0,1].
func characterSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	bigrams := func(s string) map[string]int {
		m := make(map[string]int)
		r := []rune(s)
		for i := 0; i+1 < len(r); i++ {
			m[string(r[i:i+2])]++
		}
		return m
	}
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	overlap := 0
	for k, ca := range ba {
		if cb, ok := bb[k]; ok {
			if ca < cb {
				overlap += ca
			} else {
				overlap += cb
			}
		}
	}
	total := 0
	for _, c := range ba {
		total += c
	}
	for _, c := range bb {
		total += c
	}
	if total == 0 {
		return 0
	}
	return 2 * float64(overlap) / float64(total)
}

// cosineSimilarity treats query words and document tokens as term-frequency
// vectors over their joint vocabulary.
func cosineSimilarity(words []string, text string) float64 {
	if len(words) == 0 {
		return 0
	}
	qv := make(map[string]float64)
	for _, w := range words {
		qv[w]++
	}
	dv := make(map[string]float64)
	for _, t := range tokenize(text) {
		dv[strings.ToLower(t)]++
	}
	var dot, qNorm, dNorm float64
	for k, v := range qv {
		qNorm += v * v
		if dw, ok := dv[k]; ok {
			dot += v * dw
		}
	}
	for _, v := range dv {
		dNorm += v * v
	}
	if qNorm == 0 || dNorm == 0 {
		return 0
	}
	return dot / (math.Sqrt(qNorm) * math.Sqrt(dNorm))
}

func jaccardSimilarity(a []string, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[strings.ToLower(w)] = true
	}
	inter := 0
	for w := range setA {
		if setB[w] {
			inter++
		}
	}
	union := len(setA)
	for w := range setB {
		if !setA[w] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// hierarchyDistance approximates how deep an entry sits in a path
// hierarchy, normalised by a soft cap of 10 segments.
func hierarchyDistance(path string) float64 {
	if path == "" {
		return 0
	}
	depth := strings.Count(strings.Trim(path, "/"), "/") + 1
	d := float64(depth) / 10.0
	if d > 1 {
		return 1
	}
	return d
}
