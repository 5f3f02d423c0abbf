package indexstore

import (
	"regexp"
	"strings"
	"unicode"
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// tokenizeIdentifiers splits text into lowercase terms, additionally
// splitting camelCase/PascalCase/snake_case identifiers so that entries of
// type "code" and "gotcha" index their symbol names as separate terms. It
// backs the "simple" tokenizer option; "porter" uses Bleve's built-in
// English analyzer instead (see analyzer.go).
func tokenizeIdentifiers(text string) []string {
	var tokens []string
	for _, word := range tokenRegex.FindAllString(text, -1) {
		for _, t := range splitIdentifier(word) {
			lower := strings.ToLower(t)
			if len(lower) >= 2 {
				tokens = append(tokens, lower)
			}
		}
	}
	return tokens
}

func splitIdentifier(token string) []string {
	var result []string
	if strings.Contains(token, "_") {
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, splitCamelCase(part)...)
			}
		}
		return result
	}
	return splitCamelCase(token)
}

// splitCamelCase splits camelCase and PascalCase identifiers, keeping
// acronym runs together ("HTTPHandler" -> ["HTTP", "Handler"]).
func splitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

func buildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}

// DefaultStopWords filters common low-signal words from indexed content.
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "of", "to", "in", "on", "is",
	"are", "was", "were", "be", "been", "it", "this", "that",
}
