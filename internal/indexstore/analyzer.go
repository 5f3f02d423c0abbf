package indexstore

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/asciifolding"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	identifierTokenizerName = "forge_identifier_tokenizer"
	stopFilterName          = "forge_stop"
	simpleAnalyzerName      = "forge_simple"
	porterAnalyzerName      = en.AnalyzerName
)

func init() {
	_ = registry.RegisterTokenizer(identifierTokenizerName, identifierTokenizerConstructor)
	_ = registry.RegisterTokenFilter(stopFilterName, stopFilterConstructor(DefaultStopWords))
}

// buildIndexMapping constructs the Bleve mapping for an Entry document: the
// title/content/tags/category fields are analyzed text so query-time boosts
// (spec §4.1 field weights) apply to them; type/category/tags/projectId/
// agentTypes/language are additionally indexed as unanalyzed keyword fields
// so facets and filter predicates match on exact values; lastModified is a
// date field for recency filters and range queries.
func buildIndexMapping(tokenizer string, removeAccents, caseSensitive bool) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	analyzerName, err := registerTextAnalyzer(im, tokenizer, removeAccents, caseSensitive)
	if err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}
	im.DefaultAnalyzer = analyzerName

	text := bleve.NewTextFieldMapping()
	text.Analyzer = analyzerName
	text.Store = false
	text.IncludeTermVectors = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = false

	date := bleve.NewDateTimeFieldMapping()
	date.Store = false

	entryMapping := bleve.NewDocumentMapping()
	entryMapping.AddFieldMappingsAt(FieldTitle, text)
	entryMapping.AddFieldMappingsAt(FieldContent, text)
	entryMapping.AddFieldMappingsAt(FieldTags, text)
	entryMapping.AddFieldMappingsAt(FieldCategory, text)

	entryMapping.AddFieldMappingsAt("type", keyword)
	entryMapping.AddFieldMappingsAt("category_facet", keyword)
	entryMapping.AddFieldMappingsAt("tags_facet", keyword)
	entryMapping.AddFieldMappingsAt("project_id", keyword)
	entryMapping.AddFieldMappingsAt("agent_types", keyword)
	entryMapping.AddFieldMappingsAt("language", keyword)
	entryMapping.AddFieldMappingsAt("last_modified", date)

	im.AddDocumentMapping("entry", entryMapping)
	im.DefaultMapping = entryMapping
	im.DefaultType = "entry"

	return im, nil
}

// registerTextAnalyzer registers the analyzer selected by the tokenizer
// config and returns its name. "porter" reuses Bleve's stemmed English
// analyzer; "simple" builds a custom analyzer over the identifier
// tokenizer in tokenizer.go.
func registerTextAnalyzer(im *bleve.IndexMapping, tokenizer string, removeAccents, caseSensitive bool) (string, error) {
	if tokenizer == "porter" {
		return porterAnalyzerName, nil
	}

	filters := []string{}
	if !caseSensitive {
		filters = append(filters, lowercase.Name)
	}
	if removeAccents {
		filters = append(filters, asciifolding.Name)
	}
	filters = append(filters, stopFilterName)

	err := im.AddCustomAnalyzer(simpleAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     identifierTokenizerName,
		"token_filters": toAnySlice(filters),
	})
	if err != nil {
		return "", err
	}
	return simpleAnalyzerName, nil
}

func toAnySlice(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func identifierTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &identifierTokenizer{}, nil
}

// identifierTokenizer adapts tokenizeIdentifiers (camelCase/snake_case
// splitting) to Bleve's analysis.Tokenizer interface.
type identifierTokenizer struct{}

func (identifierTokenizer) Tokenize(input []byte) analysis.TokenStream {
	terms := tokenizeIdentifiers(string(input))
	stream := make(analysis.TokenStream, 0, len(terms))
	for i, term := range terms {
		stream = append(stream, &analysis.Token{
			Term:     []byte(term),
			Start:    0,
			End:      len(term),
			Position: i + 1,
			Type:     analysis.AlphaNumeric,
		})
	}
	return stream
}

func stopFilterConstructor(words []string) registry.TokenFilterConstructor {
	stop := buildStopWordMap(words)
	return func(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
		return &stopTokenFilter{stopWords: stop}, nil
	}
}

type stopTokenFilter struct {
	stopWords map[string]struct{}
}

func (f *stopTokenFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	out := make(analysis.TokenStream, 0, len(input))
	for _, tok := range input {
		if _, isStop := f.stopWords[string(tok.Term)]; !isStop {
			out = append(out, tok)
		}
	}
	return out
}
