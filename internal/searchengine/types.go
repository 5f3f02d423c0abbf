package searchengine

import (
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// Weights are the per-factor multipliers applied in the enhanced-score
// blend (spec §4.2 default Search Weights).
type Weights struct {
	Title         float64
	Content       float64
	Tags          float64
	Category      float64
	Recency       float64
	Effectiveness float64
}

// DefaultWeights are the engine's default Search Weights.
var DefaultWeights = Weights{
	Title:         3.0,
	Content:       1.0,
	Tags:          2.0,
	Category:      1.5,
	Recency:       0.1,
	Effectiveness: 0.2,
}

// SearchQuery is a request to the engine.
type SearchQuery struct {
	Query     string
	Filter    indexstore.Filter
	QueryType indexstore.QueryType

	Limit  int
	Offset int

	IncludeSnippets  bool
	HighlightResults bool
	SnippetLength    int
	MaxSnippets      int

	BoostRecent    bool
	BoostEffective bool

	CustomWeights *Weights
}

// RelevanceFactors are the named sub-scores contributing to a result's
// enhanced relevance (spec §4.2 step 3), each in [0,1] unless noted.
type RelevanceFactors struct {
	TitleMatch         float64
	ContentMatch       float64
	TagMatch           float64
	CategoryMatch      float64
	RecencyBoost       float64
	EffectivenessBoost float64
	UsageBoost         float64
}

// Snippet is a short excerpt of entry content surrounding a match, with
// query terms marked.
type Snippet struct {
	Text    string // snippetLength chars centred on the hit, matches wrapped in <mark>
	Start   int    // byte offset of the window start in the source field
	End     int    // byte offset of the window end in the source field
	Context string // plain text from 50 bytes before Start to 50 bytes after End
}

// SearchResult is a single scored, presented entry within a result set.
type SearchResult struct {
	Entry *indexstore.Entry

	Score float64
	Rank  int

	MatchedFields []string

	TitleSnippet    *Snippet
	ContentSnippets []Snippet

	RelevanceFactors RelevanceFactors

	// EntryMatches is the number of case-insensitive query-word occurrences
	// found within this entry's content (spec §3: "totalMatches within that
	// entry").
	EntryMatches int
}

// SearchResultSet is the response to a search.
type SearchResultSet struct {
	Results []SearchResult

	TotalMatches  int
	TotalPages    int
	CurrentPage   int
	ExecutionTime time.Duration

	Facets      *indexstore.FacetSet
	Suggestions []string
}

// QueryCount pairs a query string with an observed frequency.
type QueryCount struct {
	Query string
	Count int64
}

// SlowQuery records a single search whose execution time exceeded the
// configured slow-query threshold.
type SlowQuery struct {
	Query     string
	Duration  time.Duration
	Timestamp time.Time
}

// CacheMetrics summarizes result-cache behavior.
type CacheMetrics struct {
	HitRate     float64
	TotalHits   int64
	TotalMisses int64
	CacheSize   int
	MemoryBytes int64
}

// AnalyticsSnapshot is the aggregated analytics surface (spec §4.2).
type AnalyticsSnapshot struct {
	TotalQueries        int64
	UniqueQueries       int64
	AverageQueryLength  float64
	TopQueries          []QueryCount
	AverageResponseTime time.Duration
	SlowQueries         []SlowQuery
	CacheMetrics        CacheMetrics
	AverageResults      float64
	ZeroResultQueries   int64
	ClickThroughRate    float64
}
